package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoftware/sign4j/lib/zipslicer"
)

func TestSignCmd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	dir := t.TempDir()
	jar := filepath.Join(dir, "app.jar")
	blob := append(bytes.Repeat([]byte{0x11}, 100), 0x50, 0x4b, 0x05, 0x06)
	blob = append(blob, make([]byte, 18)...)
	require.NoError(t, os.WriteFile(jar, blob, 0644))

	cfgPath := filepath.Join(dir, "sign4j.yaml")
	logPath := filepath.Join(dir, "sign4j.log")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
tools:
  fake:
    command: sh -c 'printf SIGNATURE >> "$1"' sh {file}
`), 0644))

	RootCmd.SetArgs([]string{"-v", "--config", cfgPath, "--log-file", logPath, "--tool", "fake", jar})
	require.NoError(t, RootCmd.Execute())

	rec, err := zipslicer.LocateEndRecord(jar)
	require.NoError(t, err)
	assert.Equal(t, uint16(len("SIGNATURE")), rec.CommentLength)
	assert.Equal(t, int64(120), rec.Offset)

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), `"message":"updated ZIP comment length"`)
	assert.Contains(t, string(logged), `"run":"`)
}
