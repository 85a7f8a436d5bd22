package cli

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "partialsql.cue", []byte(`
opa_url:         "http://opa.internal:8181"
query:           "data.partial.goals.allow == true"
timeout_seconds: 3
entity_alias:    "entity"
audit_db:        "audit.db"
postgres_dsn:    "postgres://localhost/app?sslmode=disable"
table:           "goals"
columns: ["id", "title"]
`))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		OPAURL:         "http://opa.internal:8181",
		Query:          "data.partial.goals.allow == true",
		TimeoutSeconds: 3,
		EntityAlias:    "entity",
		AuditDB:        "audit.db",
		PostgresDSN:    "postgres://localhost/app?sslmode=disable",
		Table:          "goals",
		Columns:        []string{"id", "title"},
	}, cfg)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "empty.cue", []byte("\n")))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
	assert.Zero(t, cfg.Timeout())
}

func TestLoadConfig_Failures(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{"unknown field", `tabel: "goals"`, ErrCodeConfig},
		{"wrong type", `timeout_seconds: "10"`, ErrCodeConfig},
		{"non-positive timeout", `timeout_seconds: 0`, ErrCodeConfig},
		{"alias not an identifier", `entity_alias: "Entity-1"`, ErrCodeConfig},
		{"not concrete", `table: string`, ErrCodeConfig},
		{"syntax error", `table: "goals`, ErrCodeLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "partialsql.cue", []byte(tt.content+"\n")))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "expected LoadError, got %T", err)
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Contains(t, loadErr.Error(), "config file not found")
}

func TestLoadConfig_Directory(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
