package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/partialsql/internal/translate"
)

// Case defines one conformance case.
type Case struct {
	// Name uniquely identifies this case. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this case validates.
	Description string `yaml:"description"`

	// Query is the policy query the payload was compiled from. Informational.
	Query string `yaml:"query,omitempty"`

	// Payload is an inline decision payload.
	Payload string `yaml:"payload,omitempty"`

	// PayloadFile is a payload path relative to the case file.
	PayloadFile string `yaml:"payload_file,omitempty"`

	// Expect is the expected outcome.
	Expect Expect `yaml:"expect"`

	// dir is the directory of the case file.
	dir string
}

// Expect specifies the expected outcome. Exactly one of SQL and Error is set,
// unless Golden is set, in which case both may be empty.
type Expect struct {
	// SQL is the exact expected fragment.
	SQL string `yaml:"sql,omitempty"`

	// Error is the expected failure kind, e.g. UNSUPPORTED_CONSTRUCT.
	Error string `yaml:"error,omitempty"`

	// Golden compares the outcome against testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`
}

// LoadCase reads and parses a case YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expected:" vs "expect:")
	var c Case
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}
	c.dir = filepath.Dir(path)

	if err := validateCase(&c); err != nil {
		return nil, fmt.Errorf("invalid case %s: %w", path, err)
	}
	return &c, nil
}

// LoadCases loads every *.yaml case in dir, ordered by file name.
func LoadCases(dir string) ([]*Case, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	sort.Strings(paths)

	cases := make([]*Case, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		c, err := LoadCase(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("duplicate case name %q in %s and %s", c.Name, prev, p)
		}
		seen[c.Name] = p
		cases = append(cases, c)
	}
	return cases, nil
}

// PayloadBytes returns the case's decision payload.
func (c *Case) PayloadBytes() ([]byte, error) {
	if c.Payload != "" {
		return []byte(c.Payload), nil
	}
	path := c.PayloadFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload for %s: %w", c.Name, err)
	}
	return data, nil
}

// validateCase checks that required fields are present and valid.
func validateCase(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case c.Payload == "" && c.PayloadFile == "":
		return fmt.Errorf("one of payload or payload_file is required")
	case c.Payload != "" && c.PayloadFile != "":
		return fmt.Errorf("payload and payload_file are mutually exclusive")
	}

	if c.PayloadFile != "" {
		path := c.PayloadFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, path)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("payload file not found: %s", path)
		}
	}

	if c.Expect.SQL != "" && c.Expect.Error != "" {
		return fmt.Errorf("expect: sql and error are mutually exclusive")
	}
	if c.Expect.SQL == "" && c.Expect.Error == "" && !c.Expect.Golden {
		return fmt.Errorf("expect: one of sql, error or golden is required")
	}
	if c.Expect.Error != "" && !knownKind(c.Expect.Error) {
		return fmt.Errorf("expect.error: unknown error kind %q", c.Expect.Error)
	}
	return nil
}

func knownKind(kind string) bool {
	switch translate.ErrorKind(kind) {
	case translate.KindDecode,
		translate.KindUnsupportedConstruct,
		translate.KindUnknownIdentifier,
		translate.KindInvalidOperandPairing,
		translate.KindMalformedExpr:
		return true
	}
	return false
}
