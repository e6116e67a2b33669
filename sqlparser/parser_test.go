package sqlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, sql string) Statement {
	t.Helper()
	stmts, err := Parse(sql)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	return stmts[0]
}

func TestParseCanonicalForm(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower case keywords", "select * from aircrafts_data", "SELECT * FROM aircrafts_data"},
		{"limit kept", "select * from flights limit 5", "SELECT * FROM flights LIMIT 5"},
		{"offset before limit", "select * from flights offset 3 limit 5", "SELECT * FROM flights LIMIT 5 OFFSET 3"},
		{"limit all", "select * from seats limit all", "SELECT * FROM seats LIMIT ALL"},
		{
			"where order",
			"select flight_id, status from flights where status = 'Arrived' and flight_id > 10 order by flight_id desc nulls last",
			"SELECT flight_id, status FROM flights WHERE status = 'Arrived' AND flight_id > 10 ORDER BY flight_id DESC NULLS LAST",
		},
		{
			"json functions and subscripts",
			"select json_build_object('id', a.aircraft_code, 'm', a.model->>'en') as obj from aircrafts_data a",
			"SELECT json_build_object('id', a.aircraft_code, 'm', a.model ->> 'en') AS obj FROM aircrafts_data AS a",
		},
		{
			"casts",
			"select cast(amount as numeric(10, 2)), book_date::date from bookings",
			"SELECT CAST(amount AS numeric(10, 2)), book_date::date FROM bookings",
		},
		{
			"join",
			"select * from tickets t inner join bookings b on t.book_ref = b.book_ref",
			"SELECT * FROM tickets AS t INNER JOIN bookings AS b ON t.book_ref = b.book_ref",
		},
		{
			"in subquery",
			"select * from tickets where book_ref in (select book_ref from bookings where total_amount > 1000)",
			"SELECT * FROM tickets WHERE book_ref IN (SELECT book_ref FROM bookings WHERE total_amount > 1000)",
		},
		{
			"not between and is null",
			"select * from flights where flight_id not between 1 and 5 and actual_departure is not null",
			"SELECT * FROM flights WHERE flight_id NOT BETWEEN 1 AND 5 AND actual_departure IS NOT NULL",
		},
		{
			"case expression",
			"select case when fare_conditions = 'Business' then 1 else 0 end from seats",
			"SELECT CASE WHEN fare_conditions = 'Business' THEN 1 ELSE 0 END FROM seats",
		},
		{
			"typed string",
			"select * from bookings where book_date < timestamp '2017-08-15 00:00:00'",
			"SELECT * FROM bookings WHERE book_date < TIMESTAMP '2017-08-15 00:00:00'",
		},
		{"quoted identifier", `select "Model" from "aircrafts_data"`, `SELECT "Model" FROM "aircrafts_data"`},
		{"escaped string", "select * from seats where seat_no = 'it''s'", "SELECT * FROM seats WHERE seat_no = 'it''s'"},
		{"count distinct", "select count(distinct status) from flights", "SELECT count(DISTINCT status) FROM flights"},
		{"count star", "select count(*) from flights", "SELECT count(*) FROM flights"},
		{"comments", "select * -- all\nfrom /* the */ seats", "SELECT * FROM seats"},
		{"trailing semicolon", "select * from seats;", "SELECT * FROM seats"},
		{"double negation", "select - -1 from seats", "SELECT - -1 FROM seats"},
		{"union", "select 1 from seats union all select 2 from seats", "SELECT 1 FROM seats UNION ALL SELECT 2 FROM seats"},
		{"placeholder", "select * from flights where flight_id = $1", "SELECT * FROM flights WHERE flight_id = $1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := parseOne(t, tt.in)
			assert.Equal(t, tt.want, stmt.String())
		})
	}
}

func TestParseRoundTripIsStable(t *testing.T) {
	inputs := []string{
		"select * from aircrafts_data",
		"select a.model->'en' as m from aircrafts_data a where a.range between 1000 and 5000 order by 1 limit 3 offset 1 rows",
		"select * from tickets where exists (select 1 from bookings where bookings.book_ref = tickets.book_ref)",
		"select contact_data['email'] from tickets where passenger_name ilike '%ivan%'",
		"select (1 + 2) * 3, (1, 2) from seats",
	}
	for _, in := range inputs {
		first := parseOne(t, in).String()
		second := parseOne(t, first).String()
		assert.Equal(t, first, second, in)
	}
}

func TestParseOtherStatements(t *testing.T) {
	tests := []struct {
		in      string
		keyword string
	}{
		{"delete from aircrafts_data", "DELETE"},
		{"INSERT INTO seats VALUES ('A', '1A', 'Economy')", "INSERT"},
		{"drop table flights", "DROP"},
		{"with x as (select 1) select * from x", "WITH"},
		{"update seats set seat_no = 'unterminated", "UPDATE"},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			stmt := parseOne(t, tt.in)
			other, ok := stmt.(*OtherStatement)
			require.True(t, ok)
			assert.Equal(t, tt.keyword, other.Keyword)
		})
	}
}

func TestParseMultipleStatements(t *testing.T) {
	stmts, err := Parse("select * from seats; delete from seats")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.IsType(t, &Query{}, stmts[0])
	assert.IsType(t, &OtherStatement{}, stmts[1])
}

func TestParseEmpty(t *testing.T) {
	stmts, err := Parse("  -- nothing\n ; ")
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		in      string
		message string
	}{
		{"foo bar baz", "Expected: an SQL statement, found: foo at Line: 1, Column: 1"},
		{"select * from", "Expected: identifier, found: EOF"},
		{"select * from seats where", "Expected: an expression, found: EOF"},
		{"select * from seats\nlimit 1 2", "Expected: end of statement, found: 2 at Line: 2, Column: 9"},
		{"select 'abc from seats", "Unterminated string literal at Line: 1, Column: 8"},
		{"select * from seats where a is 5", "Expected: [NOT] NULL or TRUE|FALSE or [NOT] DISTINCT FROM after IS, found: 5 at Line: 1, Column: 32"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			var syn *SyntaxError
			require.ErrorAs(t, err, &syn)
			assert.Equal(t, tt.message, syn.Message)
		})
	}
}

func TestSubqueries(t *testing.T) {
	stmt := parseOne(t, "select (select count(*) from seats) from flights f "+
		"where f.flight_id in (select flight_id from ticket_flights) "+
		"and not exists (select 1 from boarding_passes where boarding_passes.flight_id = f.flight_id)")
	q := stmt.(*Query)

	subs := Subqueries(q)
	require.Len(t, subs, 3)

	var tables []string
	for _, s := range subs {
		sel := s.Body.(*Select)
		tables = append(tables, sel.From[0].Relation.(*TableRef).Name.String())
	}
	assert.Equal(t, []string{"seats", "ticket_flights", "boarding_passes"}, tables)
}

func TestSubqueriesIncludesDerivedTables(t *testing.T) {
	q := parseOne(t, "select * from (select * from seats) s").(*Query)
	subs := Subqueries(q)
	require.Len(t, subs, 1)
	assert.Equal(t, "SELECT * FROM seats", subs[0].String())
}

func TestIdentNormalized(t *testing.T) {
	assert.Equal(t, "flights", Ident{Value: "FLIGHTS"}.Normalized())
	assert.Equal(t, "FLIGHTS", Ident{Value: "FLIGHTS", Quote: '"'}.Normalized())
	assert.Equal(t, "flights", ObjectName{{Value: "bookings"}, {Value: "Flights"}}.Base().Normalized())
}
