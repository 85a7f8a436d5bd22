package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// Config holds settings shared by commands. Every field is optional; a flag
// given on the command line wins over the config value.
type Config struct {
	OPAURL         string   `json:"opa_url,omitempty"`
	Query          string   `json:"query,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
	EntityAlias    string   `json:"entity_alias,omitempty"`
	AuditDB        string   `json:"audit_db,omitempty"`
	PostgresDSN    string   `json:"postgres_dsn,omitempty"`
	Table          string   `json:"table,omitempty"`
	Columns        []string `json:"columns,omitempty"`
}

// Timeout returns the compile request timeout, zero when unset.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// configSchema closes the config so that a misspelled field is an error.
const configSchema = `
#Config: {
	opa_url?:         string
	query?:           string
	timeout_seconds?: int & >0
	entity_alias?:    =~"^[a-z_][a-z0-9_]*$"
	audit_db?:        string
	postgres_dsn?:    string
	table?:           string
	columns?: [...string]
}
`

// LoadError represents an error that occurred while loading a config file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadConfig loads and validates a CUE config file.
func LoadConfig(path string) (*Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config path is a directory: %s", path)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: filepath.Dir(path)}
	instances := load.Instances([]string{filepath.Base(path)}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	// Check for load errors
	inst := instances[0]
	if inst.Err != nil {
		return nil, cueLoadError(ErrCodeLoadFailed, "loading CUE file", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "building CUE value", err)
	}

	schema := ctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, cueLoadError(ErrCodeGeneric, "compiling config schema", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeConfig, "invalid config", err)
	}

	var out Config
	if err := unified.Decode(&out); err != nil {
		return nil, cueLoadError(ErrCodeConfig, "decoding config", err)
	}
	return &out, nil
}

// cueLoadError converts a CUE error to a LoadError, keeping the first
// source position.
func cueLoadError(code, context string, err error) *LoadError {
	loadErr := &LoadError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
