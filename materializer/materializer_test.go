package materializer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melkeydev/demodb-query/catalog"
	"github.com/melkeydev/demodb-query/databases/sqlite"
	"github.com/melkeydev/demodb-query/types"
)

type stubStore struct {
	rows []types.Row
	err  error
	sql  []string
}

func (s *stubStore) Query(_ context.Context, sql string) ([]types.Row, error) {
	s.sql = append(s.sql, sql)
	return s.rows, s.err
}

func demoStore(t *testing.T) Store {
	t.Helper()
	conn, err := sqlite.OpenDemo(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFetchAndRender(t *testing.T) {
	store := demoStore(t)

	lines, err := FetchAndRender(context.Background(),
		"SELECT * FROM bookings ORDER BY book_ref LIMIT 10", store, catalog.Bookings)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"book_ref: 00000F, book_date: 2017-07-05T00:12:00+00:00, total_amount: 265700.00",
		"book_ref: 000012, book_date: 2017-07-14T06:02:00+00:00, total_amount: 37900.00",
		"book_ref: 0002D8, book_date: 2017-08-07T18:40:00+00:00, total_amount: 99800.00",
	}, lines)
}

func TestFetchAndRenderJSON(t *testing.T) {
	store := demoStore(t)

	doc, err := FetchAndRenderJSON(context.Background(),
		"SELECT * FROM aircrafts_data WHERE aircraft_code = '773' LIMIT 10", store, catalog.Aircrafts)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"aircraft_code":"773","model":{"en":"Boeing 777-300","ru":"Боинг 777-300"},"range":11100}]`,
		doc)
}

func TestFetchAndRenderColumnar(t *testing.T) {
	store := demoStore(t)
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec, err := FetchAndRenderColumnar(context.Background(),
		"SELECT * FROM flights ORDER BY flight_id LIMIT 10", store, catalog.Flights, mem)
	require.NoError(t, err)
	defer rec.Release()

	assert.EqualValues(t, 3, rec.NumRows())
	assert.EqualValues(t, 10, rec.NumCols())
	assert.True(t, rec.Schema().Equal(catalog.Flights.Schema()))

	ids := rec.Column(0).(*array.Int32)
	assert.Equal(t, []int32{1185, 3979, 30625}, ids.Int32Values())

	dep := rec.Column(2).(*array.String)
	assert.Equal(t, "2017-09-10T06:50:00+00:00", dep.Value(0))

	actual := rec.Column(8)
	assert.True(t, actual.IsNull(0))
	assert.False(t, actual.IsNull(2))
}

func TestDecimalFidelityAcrossProjections(t *testing.T) {
	store := demoStore(t)
	ctx := context.Background()
	sql := "SELECT * FROM bookings WHERE book_ref = '0002D8' LIMIT 10"

	lines, err := FetchAndRender(ctx, sql, store, catalog.Bookings)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "total_amount: 99800.00")

	doc, err := FetchAndRenderJSON(ctx, sql, store, catalog.Bookings)
	require.NoError(t, err)
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "99800.00", parsed[0]["total_amount"])

	rec, err := FetchAndRenderColumnar(ctx, sql, store, catalog.Bookings, nil)
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, "99800.00", rec.Column(2).(*array.String).Value(0))
}

func TestProjectionsAgree(t *testing.T) {
	store := demoStore(t)
	ctx := context.Background()

	for _, name := range catalog.Default().Names() {
		t.Run(name, func(t *testing.T) {
			entity, ok := catalog.Default().Resolve(name)
			require.True(t, ok)
			sql := "SELECT * FROM " + name + " LIMIT 10"

			lines, err := FetchAndRender(ctx, sql, store, entity)
			require.NoError(t, err)

			doc, err := FetchAndRenderJSON(ctx, sql, store, entity)
			require.NoError(t, err)
			var objs []map[string]any
			require.NoError(t, json.Unmarshal([]byte(doc), &objs))

			rec, err := FetchAndRenderColumnar(ctx, sql, store, entity, nil)
			require.NoError(t, err)
			defer rec.Release()

			require.NotEmpty(t, lines)
			assert.Len(t, objs, len(lines))
			assert.EqualValues(t, len(lines), rec.NumRows())

			for i, col := range entity.Columns() {
				for row := range objs {
					_, present := objs[row][col.Name]
					require.True(t, present, "%s missing from json", col.Name)
					isNull := objs[row][col.Name] == nil
					assert.Equal(t, isNull, rec.Column(i).IsNull(row), "%s row %d", col.Name, row)
					if isNull {
						assert.Contains(t, lines[row], col.Name+": "+catalog.NullDisplay)
					}
				}
			}
		})
	}
}

func TestStoreErrorIsDistinct(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}

	_, err := FetchAndRender(context.Background(), "SELECT * FROM seats LIMIT 10", store, catalog.Seats)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	assert.NotErrorIs(t, err, catalog.ErrDecode)
	assert.ErrorContains(t, err, "connection refused")

	var se *StoreError
	assert.ErrorAs(t, err, &se)
}

func TestDecodeErrorAbortsBatch(t *testing.T) {
	store := &stubStore{rows: []types.Row{
		{"aircraft_code": "319", "seat_no": "2A", "fare_conditions": "Business"},
		{"seat_no": "2C", "fare_conditions": "Business"},
	}}

	rec, err := FetchAndRenderColumnar(context.Background(), "SELECT * FROM seats LIMIT 10", store, catalog.Seats, nil)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, catalog.ErrDecode)
	assert.NotErrorIs(t, err, ErrStore)

	var de *catalog.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Row)
	assert.Equal(t, "aircraft_code", de.Column)
}

func TestFetchPassesSQLThrough(t *testing.T) {
	store := &stubStore{}
	set, err := Fetch(context.Background(), "SELECT * FROM seats LIMIT 3", store, catalog.Seats)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	assert.Equal(t, []string{"SELECT * FROM seats LIMIT 3"}, store.sql)

	doc, err := set.JSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", doc)
}
