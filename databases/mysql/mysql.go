package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/melkeydev/demodb-query/types"
)

type MySQLConnector struct {
	db *sqlx.DB
}

// sessionModes makes MySQL read quoted text, identifiers and || the way the canonical
// SQL printer writes them.
const sessionModes = "ANSI_QUOTES,NO_BACKSLASH_ESCAPES,PIPES_AS_CONCAT"

func NewMySQLConnector(connectionString string, maxConnections int) (*MySQLConnector, error) {
	cfg, err := dsnConfig(connectionString)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := sqlx.NewDb(sql.OpenDB(connector), "mysql")
	if maxConnections > 0 {
		db.SetMaxOpenConns(maxConnections)
	}

	conn := &MySQLConnector{
		db: db,
	}

	if err := conn.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

func dsnConfig(connectionString string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	// timestamps must arrive as time.Time, not raw bytes
	cfg.ParseTime = true

	if cfg.Params == nil {
		cfg.Params = make(map[string]string)
	}
	base := "@@sql_mode"
	if mode, ok := cfg.Params["sql_mode"]; ok && mode != "" {
		base = mode
	}
	cfg.Params["sql_mode"] = fmt.Sprintf("CONCAT(%s, ',%s')", base, sessionModes)
	return cfg, nil
}

func (c *MySQLConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Scan reports the columns of each listed table found in the current database. An
// empty list scans every base table.
func (c *MySQLConnector) Scan(ctx context.Context, tablesList []string) ([]types.Table, error) {
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
			placeholders[i] = "?"
			args[i] = table
		}

		query = fmt.Sprintf(`
			SELECT table_name, table_schema
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'
			AND table_schema = DATABASE()
			AND table_name IN (%s)
			ORDER BY table_name
		`, strings.Join(placeholders, ","))

	} else {
		query = `
			SELECT table_name, table_schema
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'
			AND table_schema = DATABASE()
			ORDER BY table_name
		`
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	type tableRef struct{ name, schema string }
	var found []tableRef
	for rows.Next() {
		var t tableRef
		if err := rows.Scan(&t.name, &t.schema); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		found = append(found, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}

	// columns are loaded after the table cursor is closed; a mysql connection
	// serves one result set at a time
	tables := make([]types.Table, 0, len(found))
	for _, t := range found {
		columns, err := c.loadColumns(ctx, tx, t.name, t.schema)
		if err != nil {
			return nil, fmt.Errorf("failed to load columns for table %s: %w", t.name, err)
		}

		tables = append(tables, types.Table{
			Name:    t.name,
			Columns: columns,
		})
	}

	return tables, nil
}

// Query runs sqlQuery in a read-only transaction and returns every row.
func (c *MySQLConnector) Query(ctx context.Context, sqlQuery string) ([]types.Row, error) {
	slog.DebugContext(ctx, "running query", "db", "mysql", "sql", sqlQuery)

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

func (c *MySQLConnector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *MySQLConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName, tableSchema string) ([]types.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = ?
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
