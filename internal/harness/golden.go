package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a case and compares its outcome against a golden
// file. The golden file is stored in testdata/golden/{case.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the case cannot run.
// Test failure (via goldie) occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, h *Harness, c *Case) (*Result, error) {
	t.Helper()

	result, err := h.Run(context.Background(), c)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, c.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the case.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(result.Outcome()))
}
