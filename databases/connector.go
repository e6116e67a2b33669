package databases

import (
	"context"
	"fmt"

	"github.com/melkeydev/demodb-query/databases/mysql"
	"github.com/melkeydev/demodb-query/databases/postgres"
	"github.com/melkeydev/demodb-query/databases/sqlite"
	"github.com/melkeydev/demodb-query/types"
)

// Connector is a relational store. Query is only ever handed SQL that passed the guard.
type Connector interface {
	Ping(ctx context.Context) error
	Scan(ctx context.Context, tableList []string) ([]types.Table, error)
	Query(ctx context.Context, sql string) ([]types.Row, error)
	Close() error
}

var (
	_ Connector = (*postgres.PostgresConnector)(nil)
	_ Connector = (*mysql.MySQLConnector)(nil)
	_ Connector = (*sqlite.SQLiteConnector)(nil)
)

// NewConnector opens the store of the given type. maxConnections caps the connection
// pool; zero leaves the driver default. The "demo" type ignores both and seeds a private
// in-memory database.
func NewConnector(ctx context.Context, dbType, connectionString string, maxConnections int) (Connector, error) {
	switch dbType {
	case "demo":
		return sqlite.OpenDemo(ctx)
	case "postgres":
		return postgres.NewPostgresConnector(connectionString, maxConnections)
	case "mysql":
		return mysql.NewMySQLConnector(connectionString, maxConnections)
	case "sqlite":
		return sqlite.NewSQLiteConnector(connectionString, maxConnections)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
