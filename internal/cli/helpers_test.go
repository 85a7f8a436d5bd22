package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/partialsql/internal/ast"
	tu "github.com/roach88/partialsql/internal/testutil"
)

// accountEqualsPayload is a residual with one body: account_id = 456.
func accountEqualsPayload(t *testing.T) []byte {
	t.Helper()
	return tu.Payload(t, tu.Result(
		tu.Body(tu.Expr(tu.Op("eq"), tu.Entity("account_id"), tu.Num("456"))),
	))
}

// unknownOperatorPayload uses an operator outside the catalogue.
func unknownOperatorPayload(t *testing.T) []byte {
	t.Helper()
	return tu.Payload(t, tu.Result(
		tu.Body(tu.Expr(tu.Op("regex"), tu.Entity("name"), ast.String("^x"))),
	))
}

// writeFile writes data under a fresh temp dir and returns its path.
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// execute runs cmd with args and returns stdout and the error.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
