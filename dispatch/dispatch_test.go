package dispatch

import (
	"context"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melkeydev/demodb-query/catalog"
	"github.com/melkeydev/demodb-query/databases/sqlite"
	"github.com/melkeydev/demodb-query/guard"
	"github.com/melkeydev/demodb-query/materializer"
)

func newService(t *testing.T, maxRows uint32, opts ...Option) *Service {
	t.Helper()
	conn, err := sqlite.OpenDemo(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cat := catalog.Default()
	return New(cat, guard.New(cat, maxRows), conn, opts...)
}

func TestForTableUnknown(t *testing.T) {
	svc := newService(t, 10)

	h, err := svc.ForTable("passwords")
	require.Error(t, err)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, guard.ErrUnknownTable)
}

func TestForTableEveryTable(t *testing.T) {
	svc := newService(t, 10)
	assert.Len(t, svc.Tables(), 8)

	for _, name := range svc.Tables() {
		t.Run(name, func(t *testing.T) {
			h, err := svc.ForTable(name)
			require.NoError(t, err)
			assert.Equal(t, name, h.Name())

			lines, err := h.Strings(context.Background(), "")
			require.NoError(t, err)
			assert.NotEmpty(t, lines)
		})
	}
}

func TestHandleDefaultQueryUsesCap(t *testing.T) {
	svc := newService(t, 2)
	h, err := svc.ForTable(catalog.SeatsTable)
	require.NoError(t, err)

	sql, err := h.Prepare("  ")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM seats LIMIT 2", sql)

	lines, err := h.Strings(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestHandleRejectsOtherTable(t *testing.T) {
	svc := newService(t, 10)
	h, err := svc.ForTable(catalog.SeatsTable)
	require.NoError(t, err)

	_, err = h.JSON(context.Background(), "select * from flights")
	require.Error(t, err)
	assert.ErrorIs(t, err, guard.ErrUnknownTable)
}

func TestHandleGuardErrors(t *testing.T) {
	svc := newService(t, 10)
	h, err := svc.ForTable(catalog.AircraftsDataTable)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = h.Strings(ctx, "delete from aircrafts_data")
	assert.ErrorIs(t, err, guard.ErrUnsupportedStatement)

	_, err = h.Strings(ctx, "foo bar baz")
	assert.ErrorIs(t, err, guard.ErrSyntax)

	_, err = h.Columnar(ctx, "select * from foo")
	assert.ErrorIs(t, err, guard.ErrUnknownTable)
}

func TestHandleProjectionsAgree(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	svc := newService(t, 10, WithAllocator(mem))
	h, err := svc.ForTable(catalog.TicketsTable)
	require.NoError(t, err)
	ctx := context.Background()
	sql := "select * from tickets order by ticket_no"

	lines, err := h.Strings(ctx, sql)
	require.NoError(t, err)
	doc, err := h.JSON(ctx, sql)
	require.NoError(t, err)
	rec, err := h.Columnar(ctx, sql)
	require.NoError(t, err)
	defer rec.Release()

	require.Len(t, lines, 3)
	assert.EqualValues(t, 3, rec.NumRows())
	assert.Equal(t, 3, strings.Count(doc, `"ticket_no"`))

	// the last ticket has no contact data
	assert.True(t, strings.HasSuffix(lines[2], "contact_data: NULL"))
	assert.Contains(t, doc, `"contact_data":null`)
	assert.True(t, rec.Column(4).IsNull(2))
}

func TestHandleRecords(t *testing.T) {
	svc := newService(t, 10)
	h, err := svc.ForTable(catalog.FlightsTable)
	require.NoError(t, err)

	set, err := h.Records(context.Background(), "select * from flights where status = 'Arrived'")
	require.NoError(t, err)

	flights, ok := catalog.Records[catalog.Flight](set)
	require.True(t, ok)
	require.Len(t, flights, 1)
	assert.Equal(t, int32(30625), flights[0].FlightID.V)
	assert.Equal(t, "PG0216", flights[0].FlightNo.V)
}

func TestHandleStoreFailure(t *testing.T) {
	cat := catalog.Default()
	conn, err := sqlite.OpenDemo(context.Background())
	require.NoError(t, err)
	conn.Close()

	svc := New(cat, guard.New(cat, 10), conn)
	h, err := svc.ForTable(catalog.BookingsTable)
	require.NoError(t, err)

	_, err = h.Strings(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, materializer.ErrStore)
}
