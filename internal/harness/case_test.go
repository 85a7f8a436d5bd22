package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCase(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCase_PayloadFile(t *testing.T) {
	c, err := LoadCase("testdata/cases/account_equals.yaml")
	require.NoError(t, err)

	assert.Equal(t, "account-equals", c.Name)
	assert.Equal(t, "data.goals.allow", c.Query)
	assert.Equal(t, "((entity.account_id = 456))", c.Expect.SQL)
	assert.True(t, c.Expect.Golden)

	payload, err := c.PayloadBytes()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"account_id"`)
}

func TestLoadCase_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown field",
			body:    "name: x\ndescription: d\npayload: '{}'\nexpected:\n  sql: '()'\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			body:    "description: d\npayload: '{}'\nexpect:\n  sql: '()'\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			body:    "name: x\npayload: '{}'\nexpect:\n  sql: '()'\n",
			wantErr: "description is required",
		},
		{
			name:    "no payload",
			body:    "name: x\ndescription: d\nexpect:\n  sql: '()'\n",
			wantErr: "one of payload or payload_file is required",
		},
		{
			name:    "both payloads",
			body:    "name: x\ndescription: d\npayload: '{}'\npayload_file: p.json\nexpect:\n  sql: '()'\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "missing payload file",
			body:    "name: x\ndescription: d\npayload_file: nope.json\nexpect:\n  sql: '()'\n",
			wantErr: "payload file not found",
		},
		{
			name:    "no expectation",
			body:    "name: x\ndescription: d\npayload: '{}'\nexpect: {}\n",
			wantErr: "one of sql, error or golden is required",
		},
		{
			name:    "sql and error",
			body:    "name: x\ndescription: d\npayload: '{}'\nexpect:\n  sql: '()'\n  error: DECODE_ERROR\n",
			wantErr: "sql and error are mutually exclusive",
		},
		{
			name:    "unknown kind",
			body:    "name: x\ndescription: d\npayload: '{}'\nexpect:\n  error: OOPS\n",
			wantErr: "unknown error kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCase(t, t.TempDir(), "case.yaml", tt.body)
			_, err := LoadCase(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCase_MissingFile(t *testing.T) {
	_, err := LoadCase("testdata/cases/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read case file")
}

func TestLoadCases_SortedAndUnique(t *testing.T) {
	cases, err := LoadCases("testdata/cases")
	require.NoError(t, err)
	require.NotEmpty(t, cases)
	assert.Equal(t, "account-equals", cases[0].Name)

	dir := t.TempDir()
	writeCase(t, dir, "a.yaml", "name: dup\ndescription: d\npayload: '{}'\nexpect:\n  sql: '()'\n")
	writeCase(t, dir, "b.yaml", "name: dup\ndescription: d\npayload: '{}'\nexpect:\n  sql: '()'\n")
	_, err = LoadCases(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate case name")
}
