package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatterText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	err := f.Success(map[string]int{"ignored": 1}, func(w io.Writer) {
		fmt.Fprintln(w, "all good")
	})
	require.NoError(t, err)
	assert.Equal(t, "all good\n", buf.String())
}

func TestOutputFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	err := f.Success(map[string]string{"status": "passed"}, func(io.Writer) {
		t.Fatal("text renderer must not run in json mode")
	})
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	buf.Reset()
	require.NoError(t, f.Error("boom"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "boom", resp.Error)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCheckFailed, GetExitCode(&ExitError{Code: ExitCheckFailed, Message: "failed"}))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("plain error")))
	assert.Equal(t, ExitCommandError,
		GetExitCode(fmt.Errorf("wrapped: %w", &ExitError{Code: ExitCommandError, Message: "config"})))
}

func TestRootRejectsBadFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--format", "xml", "version"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "spoolguard")
}
