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

package procutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// ExitFailed is the exit code reported when the process could not be started
// or waited on.
const ExitFailed = -1

var ErrLaunch = errors.New("failed to execute command")

type Command struct {
	Proc     *exec.Cmd
	Output   []byte
	ExitCode int

	stdio *lockedBuffer
}

// lockedBuffer collects both output streams, which exec copies from separate
// goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(d []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(d)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

// Prepare to launch a subprocess with the given command-line. Output from the
// subprocess is copied to stdout and stderr as it arrives, and collected into
// Output once it exits. Either writer may be nil.
func NewCommand(cmdline []string, stdout, stderr io.Writer) *Command {
	proc := exec.Command(cmdline[0], cmdline[1:]...)
	stdio := new(lockedBuffer)
	proc.Stdout = tee(stdio, stdout)
	proc.Stderr = tee(stdio, stderr)
	return &Command{
		Proc:     proc,
		ExitCode: ExitFailed,
		stdio:    stdio,
	}
}

func tee(buf *lockedBuffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// Run the subprocess and wait for it to complete. There is no timeout. A
// non-zero exit status is recorded in ExitCode and is not an error.
func (c *Command) Run() error {
	err := c.Proc.Run()
	c.Output = c.stdio.Bytes()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// -1 if terminated by a signal
			c.ExitCode = exitErr.ExitCode()
			return nil
		}
		c.ExitCode = ExitFailed
		return fmt.Errorf("%w: %s: %w", ErrLaunch, c.FormatCmdline(), err)
	}
	c.ExitCode = c.Proc.ProcessState.ExitCode()
	return nil
}

func (c *Command) FormatCmdline() string {
	words := make([]string, len(c.Proc.Args))
	for i, word := range c.Proc.Args {
		if strings.Contains(word, " ") {
			word = "\"" + word + "\""
		}
		words[i] = word
	}
	return strings.Join(words, " ")
}
