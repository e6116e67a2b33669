package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "DATABASE_TYPE", "DATABASE_MAX_CONNECTIONS",
		"QUERY_MAX_ROWS", "QUERY_CLAMP_LIMIT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Database.DBType)
	assert.Equal(t, DefaultMaxRows, cfg.Query.MaxRows)
	assert.Equal(t, DefaultMaxConnections, cfg.Database.MaxConnections)
	assert.False(t, cfg.Query.ClampLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte(`
database:
  type: postgres
  connection_string: postgres://demo@localhost/demo
  max_connections: 4
query:
  max_rows: 25
  clamp_limit: true
log:
  level: debug
`), 0o644))

	cfg, err := LoadConfig(fs, "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.DBType)
	assert.Equal(t, 4, cfg.Database.MaxConnections)
	assert.Equal(t, 25, cfg.Query.MaxRows)
	assert.True(t, cfg.Query.ClampLimit)
	assert.Equal(t, "debug", cfg.Log.Level)

	connStr, err := cfg.Database.GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://demo@localhost/demo", connStr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(afero.NewMemMapFs(), "nope.yaml")
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfigBadYAML(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte("database: ["), 0o644))

	_, err := LoadConfig(fs, "config.yaml")
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte("database:\n  type: sqlite\n  file: demo.db\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DATABASE_TYPE=mysql\nDATABASE_URL=from-dotenv\nQUERY_MAX_ROWS=3\n"), 0o644))
	t.Setenv("DATABASE_URL", "user:pw@tcp(localhost:3306)/demo")
	t.Setenv("QUERY_CLAMP_LIMIT", "true")

	cfg, err := LoadConfig(fs, "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.DBType)
	assert.Equal(t, "user:pw@tcp(localhost:3306)/demo", cfg.Database.ConnectionString)
	assert.Equal(t, 3, cfg.Query.MaxRows)
	assert.True(t, cfg.Query.ClampLimit)
}

func TestLoadConfigRejectsNegativeCap(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUERY_MAX_ROWS", "-1")

	_, err := LoadConfig(afero.NewMemMapFs(), "")
	assert.ErrorContains(t, err, "query.max_rows")
}

func TestGetConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		db      DatabaseConfig
		want    string
		wantErr string
	}{
		{name: "postgres", db: DatabaseConfig{DBType: "postgres", ConnectionString: "pg"}, want: "pg"},
		{name: "mysql without url", db: DatabaseConfig{DBType: "mysql"}, wantErr: "connection string is required"},
		{name: "sqlite default file", db: DatabaseConfig{DBType: "sqlite"}, want: "database.db"},
		{name: "sqlite file", db: DatabaseConfig{DBType: "sqlite", File: "x.db"}, want: "x.db"},
		{name: "sqlite url wins", db: DatabaseConfig{DBType: "sqlite", File: "x.db", ConnectionString: "file::memory:"}, want: "file::memory:"},
		{name: "demo", db: DatabaseConfig{DBType: "demo"}, want: ""},
		{name: "unknown", db: DatabaseConfig{DBType: "oracle"}, wantErr: "unsupported database type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.db.GetConnectionString()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
