package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoftware/sign4j/config"
	"github.com/sassoftware/sign4j/lib/binpatch"
	"github.com/sassoftware/sign4j/lib/procutil"
	"github.com/sassoftware/sign4j/lib/zipsign"
	"github.com/sassoftware/sign4j/lib/zipslicer"
)

func TestJoinCommand(t *testing.T) {
	words := []string{"signtool", "sign", "/f", "my cert.pfx"}
	assert.Equal(t, "signtool sign /f my cert.pfx", JoinCommand(words, false))
	assert.Equal(t, `"signtool" "sign" "/f" "my cert.pfx"`, JoinCommand(words, true))
}

func TestBuildCommand(t *testing.T) {
	words := []string{`C:\tools\signtool.exe`, "sign", "/f", `C:\certs\my cert.pfx`, "app.exe"}
	t.Run("Quoted", func(t *testing.T) {
		cmdline, argv, err := BuildCommand(words, true)
		require.NoError(t, err)
		assert.Equal(t, words, argv)
		assert.Equal(t, `"C:\tools\signtool.exe" "sign" "/f" "C:\certs\my cert.pfx" "app.exe"`, cmdline)
	})
	t.Run("Unquoted", func(t *testing.T) {
		cmdline, argv, err := BuildCommand(words, false)
		require.NoError(t, err)
		assert.Equal(t, []string{`C:\tools\signtool.exe`, "sign", "/f", `C:\certs\my`, "cert.pfx", "app.exe"}, argv)
		assert.Equal(t, `C:\tools\signtool.exe sign /f C:\certs\my cert.pfx app.exe`, cmdline)
	})
	t.Run("Empty", func(t *testing.T) {
		_, _, err := BuildCommand([]string{" ", ""}, false)
		assert.Error(t, err)
		_, _, err = BuildCommand([]string{""}, true)
		assert.Error(t, err)
	})
}

func TestExitCode(t *testing.T) {
	stage := func(s zipsign.Stage, err error) error {
		return &zipsign.StageError{Stage: s, Err: err}
	}
	cases := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{fmt.Errorf("could not find file: %w", fs.ErrNotExist), exitNoInput},
		{stage(zipsign.StageStart, zipslicer.ErrNoEndRecord), exitDataErr},
		{stage(zipsign.StageStart, zipslicer.ErrCommentLength), exitDataErr},
		{stage(zipsign.StageSigned, zipslicer.ErrCommentOverflow), exitDataErr},
		{stage(zipsign.StageLocated, procutil.ErrLaunch), exitSoftware},
		{stage(zipsign.StageSigned, binpatch.ErrDamaged), exitIOErr},
		{stage(zipsign.StageSigned, &fs.PathError{Op: "stat", Err: errors.New("boom")}), exitIOErr},
		{SignerExitError{Code: 5}, 5},
		{SignerExitError{Code: -1}, exitSoftware},
		{errors.New("other"), exitSoftware},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, ExitCode(c.err), "%v", c.err)
	}
}

func TestApplyConfig(t *testing.T) {
	cfg := &config.Config{Verbose: true, Quote: true, LogLevel: "warn", LogFile: "-"}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BoolVarP(&ArgVerbose, "verbose", "v", false, "")
	flags.BoolVarP(&ArgQuote, "quote", "q", false, "")
	flags.StringVar(&ArgLogLevel, "log-level", "", "")
	flags.StringVar(&ArgLogFile, "log-file", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=error"}))

	ApplyConfig(flags, cfg)
	assert.True(t, ArgVerbose)
	assert.True(t, ArgQuote)
	assert.Equal(t, "error", ArgLogLevel)
	assert.Equal(t, "-", ArgLogFile)
}
