package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// useTestConfig points the global --config flag at a config file backed by
// a fresh SQLite database and restores it afterwards.
func useTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "feedback.db")
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n  url: sqlite:///" + dbPath + "\ntelemetry:\n  logging:\n    level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("FEEDBACK_STORAGE_URL", "")

	orig := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = orig })
	return dir
}

// testCommand returns a command whose output is captured in the returned
// buffer.
func testCommand(name string) (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{Use: name}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}
