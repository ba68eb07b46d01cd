package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	root := New()
	for _, name := range []string{"browse", "chat", "list", "recent", "mine", "show", "report", "edit", "delete", "messages", "send", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestVersion(t *testing.T) {
	root := New()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.JSONEq(t, `{"Version":"dev","Commit":"none","Date":"unknown"}`, out.String())
	assert.Equal(t, "dev", root.Version)

	root = New()
	root.SetArgs([]string{"version", "-o", "toml"})
	assert.Error(t, root.Execute())
}

func TestReportArgs(t *testing.T) {
	root := New()
	root.SetArgs([]string{"report", "misplaced", "--title", "x"})
	assert.Error(t, root.Execute())
}

func TestReportAndList(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("LOSTFOUND_CONFIG_PATH", dir)
	t.Setenv("LOSTFOUND_PATH", filepath.Join(dir, "db"))
	t.Setenv("LOSTFOUND_USER_UID", "u1")
	t.Setenv("LOSTFOUND_USER_NAME", "Alice")
	t.Setenv("LOSTFOUND_LOG_LEVEL", "error")
	color.NoColor = true

	root := New()
	root.SetArgs([]string{"report", "found", "-t", "Student ID", "-c", "Cards", "-l", "Cafeteria"})
	require.NoError(t, root.Execute())

	root = New()
	root.SetArgs([]string{"list", "--kind", "found"})
	require.NoError(t, root.Execute())
}
