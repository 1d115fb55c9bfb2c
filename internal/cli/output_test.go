package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"item": "<a&b>"}))
	assert.Equal(t, `{"status":"ok","data":{"item":"<a&b>"}}`+"\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("E_JOURNAL", "journal unreadable", map[string]string{"path": "todo.db"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_JOURNAL", resp.Error.Code)
	assert.Equal(t, "journal unreadable", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("3 items"))
	require.NoError(t, formatter.Error("E_JOURNAL", "journal unreadable", "hidden"))

	assert.Equal(t, "3 items\nError [E_JOURNAL]: journal unreadable\n", buf.String())
}

func TestOutputFormatter_TextErrorVerboseDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("E_JOURNAL", "journal unreadable", "locked"))
	assert.Contains(t, buf.String(), "Details: locked")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}

	quiet := &OutputFormatter{Writer: out, ErrWriter: diag}
	quiet.VerboseLog("seq=%d", 1)
	assert.Empty(t, diag.String())

	loud := &OutputFormatter{Writer: out, ErrWriter: diag, Verbose: true}
	loud.VerboseLog("seq=%d", 1)
	assert.Equal(t, "seq=1\n", diag.String())
	assert.Empty(t, out.String(), "diagnostics never go to the main writer")

	fallback := &OutputFormatter{Writer: out, Verbose: true}
	fallback.VerboseLog("seq=%d", 2)
	assert.Equal(t, "seq=2\n", out.String())
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open journal", cause)

	assert.Equal(t, "failed to open journal: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no journal", NewExitError(ExitFailure, "no journal").Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError,
		GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad flag"))))
}
