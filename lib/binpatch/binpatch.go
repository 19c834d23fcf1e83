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

// Package binpatch overwrites small regions of an existing file in place.
package binpatch

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrOpenForWrite = errors.New("could not open file for writing")
	ErrWrite        = errors.New("could not write to file")
	// ErrDamaged means the patch was written but closing the file failed, so
	// the write may not have reached the disk.
	ErrDamaged = errors.New("error closing file after writing, file may be damaged")
)

// WriteAt overwrites len(patch) bytes of path starting at offset. Nothing else
// in the file is touched and the file is never truncated.
func WriteAt(path string, offset int64, patch []byte) error {
	f, closer, err := OpenFile(path)
	if err != nil {
		return err
	}
	n, err := f.WriteAt(patch, offset)
	if err == nil && n != len(patch) {
		err = io.ErrShortWrite
	}
	if err != nil {
		_ = closer()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := closer(); err != nil {
		return fmt.Errorf("%w: %w", ErrDamaged, err)
	}
	return nil
}
