package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
verbose: true
quote: true
loglevel: warn
tools:
  signtool:
    command: signtool sign /f "my cert.pfx" /t http://timestamp.example.com {file}
  empty:
    command: ""
`

func TestParse(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(testConfig))
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Quote)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "", cfg.LogFile)
	require.Len(t, cfg.Tools, 2)

	t.Run("Cmdline", func(t *testing.T) {
		tool, err := cfg.GetTool("signtool")
		require.NoError(t, err)
		assert.Equal(t, "signtool", tool.Name())
		words, err := tool.Cmdline("dist/my app.exe")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"signtool", "sign", "/f", "my cert.pfx",
			"/t", "http://timestamp.example.com", "dist/my app.exe",
		}, words)
	})
	t.Run("Missing", func(t *testing.T) {
		_, err := cfg.GetTool("jarsigner")
		assert.EqualError(t, err, `Tool "jarsigner" not found in configuration`)
	})
	t.Run("NoCommand", func(t *testing.T) {
		_, err := cfg.GetTool("empty")
		assert.Error(t, err)
	})
	t.Run("NoTools", func(t *testing.T) {
		_, err := new(Config).GetTool("signtool")
		assert.Error(t, err)
	})
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("tools:\n  signtool:\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("verbose: [1, 2"))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sign4j.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))
	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Tools, "signtool")

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultConfig(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	t.Setenv("USERPROFILE", "")
	t.Setenv("HOME", "/home/builder")
	t.Run("XDG", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/etc/xdg-user")
		assert.Equal(t, filepath.Join("/etc/xdg-user", "sign4j", "sign4j.yaml"), DefaultConfig())
	})
	t.Run("RelativeXDG", func(t *testing.T) {
		// relative values are invalid and ignored
		t.Setenv("XDG_CONFIG_HOME", "relative/dir")
		assert.Equal(t, filepath.Join("/home/builder", ".config", "sign4j", "sign4j.yaml"), DefaultConfig())
	})
	t.Run("Home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		assert.Equal(t, filepath.Join("/home/builder", ".config", "sign4j"), DefaultDir())
	})
	t.Run("None", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "")
		assert.Equal(t, "", DefaultConfig())
	})
}
