//
// Copyright (c) SAS Institute Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package zipsign runs an external signing tool against a ZIP or JAR file and
// then stretches the ZIP comment to cover whatever the tool appended, so that
// the result is still a valid archive.
package zipsign

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/sassoftware/sign4j/lib/magic"
	"github.com/sassoftware/sign4j/lib/procutil"
	"github.com/sassoftware/sign4j/lib/zipslicer"
)

var detectFile = magic.DetectFile

// Stage is the last step of a run that completed.
type Stage int

const (
	StageStart Stage = iota
	StageLocated
	StageSigned
	StagePatched
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageLocated:
		return "located"
	case StageSigned:
		return "signed"
	case StagePatched:
		return "patched"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// StageError is returned when a run aborts. Stage is the last step that
// completed, so a failure with Stage == StageSigned means the file was
// modified by the signer but its comment length was not updated.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage == StageSigned {
		return fmt.Sprintf("file was signed but not patched: %v", e.Err)
	}
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Path to the archive to sign
	Path string
	// Command to run, already split into words
	Command []string
	// Stdout and Stderr receive the signer's output as it runs
	Stdout io.Writer
	Stderr io.Writer
	// Logger for progress messages. Defaults to a no-op logger.
	Logger *zerolog.Logger
	// DryRun stops after the end record has been located
	DryRun bool
}

type Result struct {
	Stage    Stage
	FileType magic.FileType
	Record   *zipslicer.EndRecord
	// ExitCode of the signer, procutil.ExitFailed if it could not be run
	ExitCode int
	// Output is the combined stdout and stderr of the signer
	Output           []byte
	NewSize          int64
	NewCommentLength uint16
}

// Run locates the end record of the archive, runs the signing command, and
// patches the comment length. Steps run strictly in order and nothing is
// retried or rolled back. The returned Result is never nil.
func Run(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	res := &Result{Stage: StageStart, ExitCode: procutil.ExitFailed}
	abort := func(err error) (*Result, error) {
		return res, &StageError{Stage: res.Stage, Err: err}
	}

	rec, err := zipslicer.LocateEndRecord(opts.Path)
	if err != nil {
		return abort(err)
	}
	res.Record = rec
	res.Stage = StageLocated
	res.FileType, err = detectFile(opts.Path)
	if err != nil {
		// only used for diagnostics
		logger.Warn().Err(err).Msg("could not detect file type")
		res.FileType = magic.FileTypeUnknown
	}
	logger.Debug().
		Stringer("file_type", res.FileType).
		Int64("size", rec.FileSize).
		Str("human_size", humanize.IBytes(uint64(rec.FileSize))).
		Uint16("comment_length", rec.CommentLength).
		Int64("offset", rec.Offset).
		Msg("found ZIP end record")
	if opts.DryRun {
		return res, nil
	}

	if len(opts.Command) == 0 {
		return abort(errors.New("no signing command given"))
	}
	cmd := procutil.NewCommand(opts.Command, opts.Stdout, opts.Stderr)
	logger.Debug().Str("cmdline", cmd.FormatCmdline()).Msg("running command")
	err = cmd.Run()
	res.ExitCode = cmd.ExitCode
	res.Output = cmd.Output
	if err != nil {
		return abort(err)
	}
	res.Stage = StageSigned
	if cmd.ExitCode != 0 {
		logger.Warn().Int("exit_code", cmd.ExitCode).Msg("signing command failed; patching anyway")
	} else {
		logger.Debug().Int("exit_code", cmd.ExitCode).Msg("command finished")
	}

	commentLen, newSize, err := rec.Patch(opts.Path)
	res.NewSize = newSize
	if err != nil {
		return abort(err)
	}
	res.NewCommentLength = commentLen
	res.Stage = StagePatched
	logger.Debug().
		Int64("size", newSize).
		Str("appended", humanize.IBytes(uint64(newSize-rec.FileSize))).
		Uint16("comment_length", commentLen).
		Msg("updated ZIP comment length")
	return res, nil
}
