package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/melkeydev/demodb-query/types"
)

type PostgresConnector struct {
	db *sqlx.DB
}

func NewPostgresConnector(connectionString string, maxConnections int) (*PostgresConnector, error) {
	config, err := parseConfig(connectionString)
	if err != nil {
		return nil, err
	}

	db := sqlx.NewDb(stdlib.OpenDB(*config), "pgx")
	if maxConnections > 0 {
		db.SetMaxOpenConns(maxConnections)
	}

	connector := &PostgresConnector{
		db: db,
	}

	// Test the connection
	if err := connector.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return connector, nil
}

func parseConfig(connectionString string) (*pgx.ConnConfig, error) {
	config, err := pgx.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.PreferSimpleProtocol = true
	// backslashes in '...' literals stay literal
	config.RuntimeParams["standard_conforming_strings"] = "on"
	return config, nil
}

func (c *PostgresConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Scan reports the columns of each listed table found outside the system schemas. An
// empty list scans every base table.
func (c *PostgresConnector) Scan(ctx context.Context, tablesList []string) ([]types.Table, error) {
	tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{
		ReadOnly: true,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	var query string
	var args []interface{}

	if len(tablesList) > 0 {
		placeholders := make([]string, len(tablesList))
		args = make([]interface{}, len(tablesList))

		for i, table := range tablesList {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = table
		}

		query = fmt.Sprintf(`
			SELECT table_name, table_schema
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'
			AND table_schema NOT IN ('pg_catalog', 'information_schema')
			AND table_name IN (%s)
			ORDER BY table_name
		`, strings.Join(placeholders, ","))

	} else {
		query = `
			SELECT table_name, table_schema
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'
			AND table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_name
		`
	}

	type tableRow struct {
		Name   string `db:"table_name"`
		Schema string `db:"table_schema"`
	}
	var found []tableRow
	if err := tx.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	tables := make([]types.Table, 0, len(found))
	for _, t := range found {
		columns, err := c.loadColumns(ctx, tx, t.Name, t.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to load columns: %w", err)
		}

		// demo tables live in the bookings schema and are queried unqualified
		tables = append(tables, types.Table{
			Name:    t.Name,
			Columns: columns,
		})
	}

	return tables, nil
}

// Query runs sqlQuery in a read-only transaction. numeric, point and json values arrive
// as their text form, timestamptz as time.Time.
func (c *PostgresConnector) Query(ctx context.Context, sqlQuery string) ([]types.Row, error) {
	slog.DebugContext(ctx, "running query", "db", "postgres", "sql", sqlQuery)

	tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{
		ReadOnly: true,
	})

	if err != nil {
		return nil, fmt.Errorf("BeginTx failed with error: %w", err)
	}
	defer tx.Commit()

	rows, err := tx.QueryxContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("unable to query db: %w", err)
	}
	defer rows.Close()

	var results []types.Row
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("unable to scan row: %w", err)
		}
		results = append(results, types.NewRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read rows: %w", err)
	}

	return results, nil
}

func (c *PostgresConnector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *PostgresConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName, tableSchema string) ([]types.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = $1 AND table_schema = $2
		ORDER BY ordinal_position
	`

	rows, err := tx.QueryContext(ctx, query, tableName, tableSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, dataType, isNullable string
		if err := rows.Scan(&name, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, types.Column{
			Name:     name,
			Type:     dataType,
			Nullable: isNullable == "YES",
		})
	}

	return columns, rows.Err()
}
