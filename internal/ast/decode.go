package ast

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrDecode is wrapped by every decode failure in this package.
var ErrDecode = errors.New("decode error")

func decodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

//go:embed compile_result.schema.json
var compileResultSchemaJSON string

const compileResultSchemaURL = "https://partialsql.local/schemas/compile-result.schema.json"

// compileResultSchema checks the structural shape of a payload before any
// term is decoded. Term kinds are checked by UnmarshalTerm, not the schema.
var compileResultSchema = jsonschema.MustCompileString(compileResultSchemaURL, compileResultSchemaJSON)

// DecodeCompileResult validates and decodes a compile API response body.
func DecodeCompileResult(data []byte) (*CompileResult, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, decodeErrorf("compile result: %v", err)
	}
	if err := compileResultSchema.Validate(doc); err != nil {
		return nil, decodeErrorf("compile result does not match schema: %v", err)
	}

	var result CompileResult
	if err := json.Unmarshal(data, &result); err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, err
		}
		return nil, decodeErrorf("compile result: %v", err)
	}
	return &result, nil
}
