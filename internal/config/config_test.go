// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Databases: []Database{
			{Name: "default", Dialect: "postgres", DSN: "postgres://localhost/app", Default: true},
			{Name: "db0", Dialect: "sqlite", DSN: "file:db0.sqlite"},
		},
		BookkeepingTablePrefix: "sooners_",
		HistoryDir:             "history",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no databases", mutate: func(c *Config) { c.Databases = nil }, wantErr: "no databases"},
		{name: "no default", mutate: func(c *Config) { c.Databases[0].Default = false }, wantErr: "exactly one database"},
		{name: "two defaults", mutate: func(c *Config) { c.Databases[1].Default = true }, wantErr: "exactly one database"},
		{name: "empty name", mutate: func(c *Config) { c.Databases[1].Name = "" }, wantErr: "must not be empty"},
		{name: "duplicate name", mutate: func(c *Config) { c.Databases[1].Name = "default" }, wantErr: "duplicate database name"},
		{name: "unknown dialect", mutate: func(c *Config) { c.Databases[1].Dialect = "oracle" }, wantErr: "unknown dialect"},
		{name: "missing prefix", mutate: func(c *Config) { c.BookkeepingTablePrefix = "" }, wantErr: "prefix"},
		{name: "missing history dir", mutate: func(c *Config) { c.HistoryDir = "" }, wantErr: "history directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefaultDatabase(t *testing.T) {
	cfg := validConfig()
	def, ok := cfg.DefaultDatabase()
	require.True(t, ok)
	assert.Equal(t, "default", def.Name)

	cfg.Databases[0].Default = false
	_, ok = cfg.DefaultDatabase()
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sooners.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
databases:
  - name: default
    dialect: postgres
    dsn: postgres://localhost/app
    default: true
    schema: app
  - name: db0
    dialect: mysql
    dsn: user@tcp(localhost)/db0
bookkeeping_table_prefix: sooners_
history_dir: history
lock_retry_timeout: 45s
confirm_by_default: true
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, cfg.Databases, 2)
	assert.Equal(t, "app", cfg.Databases[0].Schema)
	assert.Equal(t, "mysql", cfg.Databases[1].Dialect)
	assert.Equal(t, 45*time.Second, cfg.LockRetryTimeout)
	assert.True(t, cfg.ConfirmByDefault)
	assert.False(t, cfg.DebugSchema)
}

func TestLoadFileRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sooners.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
databases:
  - name: only
    dialect: sqlite
    dsn: ":memory:"
bookkeeping_table_prefix: sooners_
history_dir: history
`), 0o644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "exactly one database")
}
