package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCmd_IndexesDirectory(t *testing.T) {
	// Given: a directory with one source file
	t.Setenv("CODESCOPE_EMBEDDING_PROVIDER", "static")
	tmpDir := t.TempDir()
	src := "def authenticate_user(token):\n    return verify(token)\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "auth.py"), []byte(src), 0o644))

	oldDir, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldDir) }()

	// When: running index on it
	rootCmd := NewRootCmd()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "."})

	err := rootCmd.Execute()

	// Then: the summary line reports the file
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Indexed 1 files")
}

func TestIndexCmd_MissingDirectory(t *testing.T) {
	t.Setenv("CODESCOPE_EMBEDDING_PROVIDER", "static")

	rootCmd := NewRootCmd()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"index", filepath.Join(t.TempDir(), "absent")})

	assert.Error(t, rootCmd.Execute())
}

func TestIndexCmd_ForceFlag(t *testing.T) {
	rootCmd := NewRootCmd()
	indexCmd, _, _ := rootCmd.Find([]string{"index"})
	require.NotNil(t, indexCmd)

	forceFlag := indexCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "false", forceFlag.DefValue)
}
