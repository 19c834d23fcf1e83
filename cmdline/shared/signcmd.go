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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sassoftware/sign4j/internal/logging"
	"github.com/sassoftware/sign4j/lib/zipsign"
)

func signCmd(cmd *cobra.Command, args []string) error {
	minArgs := 2
	if ArgTool != "" || ArgDryRun {
		minArgs = 1
	}
	if len(args) < minArgs {
		cmd.SetOut(os.Stdout)
		return cmd.Usage()
	}
	if err := InitConfig(); err != nil {
		return err
	}
	ApplyConfig(cmd.Flags(), CurrentConfig)
	if ArgVerbose && !cmd.Flags().Changed("log-level") {
		ArgLogLevel = zerolog.DebugLevel.String()
	}
	closeLog, err := logging.Setup(ArgLogLevel, ArgLogFile)
	defer closeLog()
	if err != nil {
		return err
	}
	log.Logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("run", uuid.NewString())
	})

	inputFile := args[0]
	log.Debug().Str("file", inputFile).Msg("using input file")
	if _, err := os.Stat(inputFile); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not find file %q: %w", inputFile, err)
	}
	var words []string
	if !ArgDryRun {
		words, err = signCommand(inputFile, args[1:])
		if err != nil {
			return err
		}
	}
	res, err := zipsign.Run(zipsign.Options{
		Path:    inputFile,
		Command: words,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  &log.Logger,
		DryRun:  ArgDryRun,
	})
	if err != nil {
		log.Debug().Stringer("stage", res.Stage).Msg("aborted")
		return err
	}
	if ArgDryRun {
		fmt.Printf("%s: %s, comment length %d at offset %d of %d bytes\n", inputFile,
			res.FileType, res.Record.CommentLength, res.Record.Offset, res.Record.FileSize)
		return nil
	}
	log.Debug().Stringer("stage", res.Stage).Msg("finished")
	if res.ExitCode != 0 {
		return SignerExitError{Code: res.ExitCode}
	}
	return nil
}

func signCommand(inputFile string, words []string) ([]string, error) {
	if ArgTool != "" {
		toolConf, err := CurrentConfig.GetTool(ArgTool)
		if err != nil {
			return nil, err
		}
		cmdline, err := toolConf.Cmdline(inputFile)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("tool", toolConf.Name()).Strs("cmdline", cmdline).Msg("using configured tool")
		return append(cmdline, words...), nil
	}
	cmdline, argv, err := BuildCommand(words, ArgQuote)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("cmdline", cmdline).Msg("signing command line")
	return argv, nil
}
