/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sassoftware/sign4j/config"
	"github.com/sassoftware/sign4j/lib/binpatch"
	"github.com/sassoftware/sign4j/lib/procutil"
	"github.com/sassoftware/sign4j/lib/zipslicer"
)

// sysexits.h
const (
	exitDataErr  = 65
	exitNoInput  = 66
	exitSoftware = 70
	exitIOErr    = 74
)

// SignerExitError is returned when the signing command exited non-zero but the
// archive was patched anyway.
type SignerExitError struct {
	Code int
}

func (e SignerExitError) Error() string {
	return fmt.Sprintf("signing command exited with status %d", e.Code)
}

// ExitCode picks the process exit status for an error returned by the root
// command.
func ExitCode(err error) int {
	var signerErr SignerExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &signerErr):
		if signerErr.Code > 0 {
			return signerErr.Code
		}
		return exitSoftware
	case errors.Is(err, fs.ErrNotExist):
		return exitNoInput
	case errors.Is(err, zipslicer.ErrNoEndRecord),
		errors.Is(err, zipslicer.ErrCommentLength),
		errors.Is(err, zipslicer.ErrCommentOverflow),
		errors.Is(err, zipslicer.ErrFileShrunk):
		return exitDataErr
	case errors.Is(err, procutil.ErrLaunch):
		return exitSoftware
	case errors.Is(err, binpatch.ErrOpenForWrite),
		errors.Is(err, binpatch.ErrWrite),
		errors.Is(err, binpatch.ErrDamaged),
		errors.As(err, new(*fs.PathError)):
		return exitIOErr
	default:
		return exitSoftware
	}
}

// Load the config file named by --config, or the default one if it exists.
func InitConfig() error {
	if CurrentConfig != nil {
		return nil
	}
	usedDefault := false
	if ArgConfig == "" {
		ArgConfig = config.DefaultConfig()
		usedDefault = true
	}
	if ArgConfig == "" {
		CurrentConfig = new(config.Config)
		return nil
	}
	cfg, err := config.ReadFile(ArgConfig)
	if err != nil {
		if os.IsNotExist(err) && usedDefault {
			CurrentConfig = new(config.Config)
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	CurrentConfig = cfg
	return nil
}

// Fill in flags that were not given on the command line from the config file.
func ApplyConfig(flags *pflag.FlagSet, cfg *config.Config) {
	if !flags.Changed("verbose") {
		ArgVerbose = cfg.Verbose
	}
	if !flags.Changed("quote") {
		ArgQuote = cfg.Quote
	}
	if !flags.Changed("log-level") {
		ArgLogLevel = cfg.LogLevel
	}
	if !flags.Changed("log-file") {
		ArgLogFile = cfg.LogFile
	}
}

// BuildCommand turns the words of the signing command into the command line
// shown to the user and the argv that is executed. With quote set each word is
// kept intact, otherwise the joined line is split on whitespace. Backslashes
// are never treated as escapes so Windows paths pass through unchanged.
func BuildCommand(words []string, quote bool) (string, []string, error) {
	cmdline := JoinCommand(words, quote)
	var argv []string
	if quote {
		argv = append(argv, words...)
	} else {
		argv = strings.Fields(cmdline)
	}
	if len(argv) == 0 || argv[0] == "" {
		return cmdline, nil, errors.New("empty signing command")
	}
	return cmdline, argv, nil
}

// Combine the words of the signing command into a single command line,
// optionally wrapping each one in double quotes.
func JoinCommand(words []string, quote bool) string {
	if !quote {
		return strings.Join(words, " ")
	}
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = "\"" + word + "\""
	}
	return strings.Join(quoted, " ")
}
