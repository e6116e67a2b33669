package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDemo(t *testing.T) *SQLiteConnector {
	t.Helper()
	conn, err := OpenDemo(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestQueryReturnsNormalizedRows(t *testing.T) {
	conn := openDemo(t)

	rows, err := conn.Query(context.Background(), "SELECT * FROM bookings ORDER BY book_ref LIMIT 10")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "00000F", rows[0]["book_ref"])
	assert.Equal(t, "265700.00", rows[0]["total_amount"])
	assert.Equal(t, "2017-07-05 03:12:00+03", rows[0]["book_date"])
}

func TestQueryTimestampColumns(t *testing.T) {
	conn := openDemo(t)

	rows, err := conn.Query(context.Background(), "SELECT * FROM flights WHERE flight_id = 30625")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	dep, ok := rows[0]["scheduled_departure"].(time.Time)
	require.True(t, ok, "got %T", rows[0]["scheduled_departure"])
	assert.True(t, dep.Equal(time.Date(2017, 8, 15, 11, 5, 0, 0, time.UTC)))
	assert.Equal(t, int64(30625), rows[0]["flight_id"])
}

func TestQueryNulls(t *testing.T) {
	conn := openDemo(t)

	rows, err := conn.Query(context.Background(), "SELECT actual_departure FROM flights WHERE flight_id = 1185")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["actual_departure"])
}

func TestQueryEmptyResult(t *testing.T) {
	conn := openDemo(t)

	rows, err := conn.Query(context.Background(), "SELECT * FROM seats WHERE 1 = 0")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryError(t *testing.T) {
	conn := openDemo(t)

	_, err := conn.Query(context.Background(), "SELECT * FROM nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to query db")
}

func TestScan(t *testing.T) {
	conn := openDemo(t)

	tables, err := conn.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tables, 8)
	assert.Equal(t, "aircrafts_data", tables[0].Name)

	tables, err = conn.Scan(context.Background(), []string{"seats", "missing"})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "seats", tables[0].Name)

	var names []string
	for _, c := range tables[0].Columns {
		names = append(names, c.Name)
		assert.False(t, c.Nullable)
	}
	assert.Equal(t, []string{"aircraft_code", "seat_no", "fare_conditions"}, names)
}

func TestNewSQLiteConnectorFile(t *testing.T) {
	path := t.TempDir() + "/demo.db"
	conn, err := NewSQLiteConnector(path, 2)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, SeedDemo(context.Background(), conn.db))
	rows, err := conn.Query(context.Background(), "SELECT count(*) AS n FROM seats")
	require.NoError(t, err)
	assert.Equal(t, int64(4), rows[0]["n"])
}

func TestCreateDemoFile(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/demo.db"
	require.NoError(t, CreateDemoFile(ctx, path))

	conn, err := NewSQLiteConnector(path, 1)
	require.NoError(t, err)
	defer conn.Close()
	rows, err := conn.Query(ctx, "SELECT count(*) AS n FROM flights")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows[0]["n"])

	err = CreateDemoFile(ctx, path)
	assert.ErrorContains(t, err, "already has 8 tables")
}
