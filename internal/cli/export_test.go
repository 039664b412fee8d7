package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_LoginDOT(t *testing.T) {
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Notation: "dot"}
	cmd, out := newTestCommand()

	err := runExport(opts, "login", cmd)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `digraph "login"`)
	assert.Contains(t, out.String(), "authenticated")
	assert.Contains(t, out.String(), "submit-wrong-password")
}

func TestExport_RegisterMermaid(t *testing.T) {
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Notation: "mermaid"}
	cmd, out := newTestCommand()

	err := runExport(opts, "register", cmd)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "stateDiagram-v2")
	assert.Contains(t, out.String(), "password_mismatch")
}

func TestExport_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.dot")
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Notation: "dot", Out: path}
	cmd, out := newTestCommand()

	err := runExport(opts, "login", cmd)
	require.NoError(t, err)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `digraph "login"`)
}

func TestExport_UnknownFlow(t *testing.T) {
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Notation: "dot"}
	cmd, _ := newTestCommand()

	err := runExport(opts, "checkout", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExport_InvalidNotation(t *testing.T) {
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Notation: "svg"}
	cmd, _ := newTestCommand()

	err := runExport(opts, "login", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid notation")
}
