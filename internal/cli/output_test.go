package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/partialsql/internal/translate"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(TranslationOutput{SQL: "((entity.a = 1))", Digest: "d"})
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   TranslationOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "((entity.a = 1))", resp.Data.SQL)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeDecode, "cannot decode compile result", map[string]string{"term": "x"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_DECODE", resp.Error.Code)
	assert.Equal(t, "cannot decode compile result", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error(ErrCodeUnknownIdent, "unknown operator", "term: like"))
			assert.Contains(t, buf.String(), "Error [E_UNKNOWN_IDENTIFIER]: unknown operator")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: term: like")
			} else {
				assert.NotContains(t, buf.String(), "Details")
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("Read %d byte(s)", 12)
	assert.Empty(t, out.String())
	assert.Equal(t, "Read 12 byte(s)\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("hidden")
	assert.Equal(t, "Read 12 byte(s)\n", errOut.String())
}

func TestOutputFormatter_VerboseLogWithoutErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, Verbose: true}

	assert.Same(t, out, formatter.GetErrWriter())
	formatter.VerboseLog("fallback")
	assert.Equal(t, "fallback\n", out.String())
}

func TestTranslationErrorCode(t *testing.T) {
	tests := []struct {
		kind translate.ErrorKind
		want string
	}{
		{translate.KindDecode, "E_DECODE"},
		{translate.KindUnsupportedConstruct, "E_UNSUPPORTED"},
		{translate.KindUnknownIdentifier, "E_UNKNOWN_IDENTIFIER"},
		{translate.KindInvalidOperandPairing, "E_OPERAND_PAIRING"},
		{translate.KindMalformedExpr, "E_MALFORMED_EXPR"},
		{translate.ErrorKind("SOMETHING_ELSE"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, TranslationErrorCode(tt.kind))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "translation failed", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestTranslationError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := fmt.Errorf("queries[0][0]: %w", &translate.Error{
		Kind:    translate.KindUnknownIdentifier,
		Message: "unknown operator",
		Term:    "like",
	})
	err := translationError(formatter, cause)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, cause)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_UNKNOWN_IDENTIFIER", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "queries[0][0]")
	assert.Equal(t, map[string]any{"term": "like"}, resp.Error.Details)
}

func TestCommandError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := commandError(formatter, ErrCodeInput, "reading payload", errors.New("no such file"))

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E002: reading payload: no such file")
	assert.Equal(t, "Error [E002]: reading payload: no such file\n", buf.String())
}
