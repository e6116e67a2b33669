package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melkeydev/demodb-query/types"
)

func TestDecodeAircraft(t *testing.T) {
	r, err := Aircrafts.DecodeRow(types.Row{
		"aircraft_code": "773",
		"model":         []byte(`{"en": "Boeing 777-300", "ru": "Боинг 777-300"}`),
		"range":         int64(11100),
	})
	require.NoError(t, err)

	require.Equal(t, "773", r.AircraftCode.V)
	require.True(t, r.Model.Valid)
	require.Equal(t, "Boeing 777-300", *r.Model.V.En)
	require.Equal(t, int32(11100), r.Range.V)

	require.Equal(t,
		`aircraft_code: 773, model: {"en":"Boeing 777-300","ru":"Боинг 777-300"}, range: 11100`,
		Aircrafts.Display(&r))

	obj, err := Aircrafts.JSON(&r)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"aircraft_code":"773","model":{"en":"Boeing 777-300","ru":"Боинг 777-300"},"range":11100}`,
		string(obj))
}

func TestJSONKeysFollowColumnOrder(t *testing.T) {
	r, err := Flights.DecodeRow(types.Row{"flight_id": int64(1)})
	require.NoError(t, err)

	obj, err := Flights.JSON(&r)
	require.NoError(t, err)
	require.Equal(t,
		`{"flight_id":1,"flight_no":null,"scheduled_departure":null,"scheduled_arrival":null,`+
			`"departure_airport":null,"arrival_airport":null,"status":null,"aircraft_code":null,`+
			`"actual_departure":null,"actual_arrival":null}`,
		string(obj))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		row    types.Row
		column string
		want   error
	}{
		{
			name:   "required column missing",
			row:    types.Row{"book_date": "2016-08-13T12:40:00Z"},
			column: "book_ref",
			want:   ErrMissingValue,
		},
		{
			name:   "required column null",
			row:    types.Row{"book_ref": nil},
			column: "book_ref",
			want:   ErrMissingValue,
		},
		{
			name:   "wrong type",
			row:    types.Row{"book_ref": "000004", "book_date": int64(7)},
			column: "book_date",
			want:   ErrWrongType,
		},
		{
			name:   "bad decimal",
			row:    types.Row{"book_ref": "000004", "total_amount": "lots"},
			column: "total_amount",
			want:   ErrWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bookings.DecodeRow(tt.row)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrDecode)
			require.ErrorIs(t, err, tt.want)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			require.Equal(t, BookingsTable, de.Table)
			require.Equal(t, tt.column, de.Column)
		})
	}
}

func TestDecodeAllAbortsWholeSet(t *testing.T) {
	rows := []types.Row{
		{"aircraft_code": "773"},
		{"aircraft_code": "763"},
		{"aircraft_code": "SU9", "range": "far"},
	}

	set, err := Aircrafts.Decode(rows)
	require.Nil(t, set)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, 2, de.Row)
	require.Equal(t, "range", de.Column)
}

func TestDecimalFidelity(t *testing.T) {
	inputs := []any{"99800.00", []byte("99800.00")}
	for _, in := range inputs {
		set, err := Bookings.Decode([]types.Row{{"book_ref": "00000F", "total_amount": in}})
		require.NoError(t, err)

		require.Equal(t, []string{"book_ref: 00000F, book_date: NULL, total_amount: 99800.00"}, set.Strings())

		doc, err := set.JSON()
		require.NoError(t, err)
		require.Equal(t, `[{"book_ref":"00000F","book_date":null,"total_amount":"99800.00"}]`, doc)

		rec, err := set.Columnar(memory.DefaultAllocator)
		require.NoError(t, err)
		require.Equal(t, "99800.00", rec.Column(2).(*array.String).Value(0))
		rec.Release()
	}
}

func TestTimestampRendering(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	inputs := []any{
		time.Date(2016, 8, 13, 15, 40, 0, 0, moscow),
		"2016-08-13 12:40:00+00",
		"2016-08-13T12:40:00Z",
		[]byte("2016-08-13 15:40:00+03:00"),
	}

	for _, in := range inputs {
		r, err := Bookings.DecodeRow(types.Row{"book_ref": "000004", "book_date": in})
		require.NoError(t, err)
		require.Equal(t, "2016-08-13T12:40:00+00:00", r.BookDate.String())
	}
}

func TestPointDecoding(t *testing.T) {
	inputs := []any{
		"(129.77099609375,62.0932998657226562)",
		[]byte(`{"x": 129.77099609375, "y": 62.0932998657226562}`),
		map[string]any{"x": 129.77099609375, "y": 62.0932998657226562},
	}

	for _, in := range inputs {
		r, err := Airports.DecodeRow(types.Row{"airport_code": "YKS", "coordinates": in})
		require.NoError(t, err)
		require.True(t, r.Coordinates.Valid)
		assert.InDelta(t, 129.77099609375, r.Coordinates.X, 1e-9)
		assert.InDelta(t, 62.0932998657226562, r.Coordinates.Y, 1e-9)
	}
}

func TestNullPresenceAgreesAcrossProjections(t *testing.T) {
	rows := []types.Row{
		{"ticket_no": "0005432000987", "contact_data": nil, "passenger_name": "VALERIY TIKHONOV"},
		{"ticket_no": "0005432000988", "contact_data": "null"},
		{"ticket_no": "0005432000989", "contact_data": `{"phone": "+70127117011"}`},
	}

	set, err := Tickets.Decode(rows)
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	lines := set.Strings()
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "contact_data: NULL")
	require.Contains(t, lines[1], "contact_data: NULL")
	require.Contains(t, lines[2], `contact_data: {"email":null,"phone":"+70127117011"}`)

	doc, err := set.JSON()
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &decoded))
	require.Len(t, decoded, 3)
	require.Nil(t, decoded[0]["contact_data"])
	require.Nil(t, decoded[1]["contact_data"])
	require.Equal(t, map[string]any{"email": nil, "phone": "+70127117011"}, decoded[2]["contact_data"])

	rec, err := set.Columnar(memory.DefaultAllocator)
	require.NoError(t, err)
	defer rec.Release()
	require.EqualValues(t, 3, rec.NumRows())
	contacts := rec.Column(4).(*array.String)
	require.True(t, contacts.IsNull(0))
	require.True(t, contacts.IsNull(1))
	require.Equal(t, `{"email":null,"phone":"+70127117011"}`, contacts.Value(2))
}

func TestSchemaMatchesColumns(t *testing.T) {
	for _, name := range Default().Names() {
		d, ok := Default().Resolve(name)
		require.True(t, ok)

		cols := d.Columns()
		schema := d.Schema()
		require.Equal(t, len(cols), schema.NumFields(), name)
		require.GreaterOrEqual(t, len(cols), 3)
		require.LessOrEqual(t, len(cols), 10)
		for i, c := range cols {
			f := schema.Field(i)
			require.Equal(t, c.Name, f.Name)
			require.Equal(t, c.Nullable, f.Nullable)
			if c.Type == TypeInt32 {
				require.Equal(t, arrow.PrimitiveTypes.Int32, f.Type)
			} else {
				require.Equal(t, arrow.BinaryTypes.String, f.Type)
			}
		}
	}
}

func TestAppendColumnarRejectsForeignBuilder(t *testing.T) {
	b := array.NewRecordBuilder(memory.DefaultAllocator, Seats.Schema())
	defer b.Release()

	err := Bookings.AppendColumnar([]Booking{{}}, b)
	require.Error(t, err)
}

func TestRecordsAccessor(t *testing.T) {
	set, err := Seats.Decode([]types.Row{{"aircraft_code": "319", "seat_no": "2A", "fare_conditions": "Business"}})
	require.NoError(t, err)

	seats, ok := Records[Seat](set)
	require.True(t, ok)
	require.Equal(t, "2A", seats[0].SeatNo.V)

	_, ok = Records[Booking](set)
	require.False(t, ok)
}
