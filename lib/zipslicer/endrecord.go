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

package zipslicer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sassoftware/sign4j/lib/binpatch"
)

const (
	directoryEndLen = 22
	maxCommentLen   = 0xffff
	// comment length is the last field of the fixed record
	commentLenOffset = directoryEndLen - 2
)

var directoryEndMagic = []byte{0x50, 0x4b, 0x05, 0x06}

var (
	ErrNoEndRecord     = errors.New("ZIP ending header not found so this file probably doesn't contain a JAR")
	ErrCommentLength   = errors.New("unexpected comment length")
	ErrFileShrunk      = errors.New("file is smaller than before signing")
	ErrCommentOverflow = errors.New("appended data does not fit in a ZIP comment")
)

// EndRecord describes the end of central directory record found at the tail
// of a file.
type EndRecord struct {
	// CommentLength is the declared length of the trailing ZIP comment
	CommentLength uint16
	// Offset is the absolute position of the comment length field
	Offset int64
	// FileSize is the size of the file when the record was located
	FileSize int64
}

// FindEndRecord scans the tail of r backwards for an end of central directory
// record whose comment length accounts for every byte up to size. Candidates
// whose comment length does not match are skipped. The comment length field is
// read little-endian, as laid out in the ZIP format.
func FindEndRecord(r io.ReaderAt, size int64) (*EndRecord, error) {
	tailSize := int64(directoryEndLen + maxCommentLen)
	if size < tailSize {
		tailSize = size
	}
	tail := make([]byte, tailSize)
	if tailSize > 0 {
		if _, err := r.ReadAt(tail, size-tailSize); err != nil {
			return nil, err
		}
	}
	invalid := false
	for p := len(tail) - directoryEndLen; p >= 0; p-- {
		if !bytes.Equal(tail[p:p+4], directoryEndMagic) {
			continue
		}
		commentLen := binary.LittleEndian.Uint16(tail[p+commentLenOffset:])
		if int(commentLen) != len(tail)-(p+directoryEndLen) {
			invalid = true
			continue
		}
		return &EndRecord{
			CommentLength: commentLen,
			Offset:        size - tailSize + int64(p+commentLenOffset),
			FileSize:      size,
		}, nil
	}
	if invalid {
		return nil, ErrCommentLength
	}
	return nil, ErrNoEndRecord
}

// LocateEndRecord opens path read-only, finds its end record and closes the
// file again before returning.
func LocateEndRecord(path string) (*EndRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}
	return FindEndRecord(f, info.Size())
}

// PatchedCommentLength returns the comment length that covers everything
// appended since the record was located, given the new file size.
func (e *EndRecord) PatchedCommentLength(newSize int64) (uint16, error) {
	if newSize < e.FileSize {
		return 0, fmt.Errorf("%w: %d < %d", ErrFileShrunk, newSize, e.FileSize)
	}
	n := int64(e.CommentLength) + newSize - e.FileSize
	if n > maxCommentLen {
		return 0, fmt.Errorf("%w: need %d bytes, limit is %d", ErrCommentOverflow, n, maxCommentLen)
	}
	return uint16(n), nil
}

// Patch rewrites the comment length of the record in path so that it absorbs
// any bytes appended after the record was located. Only the two bytes of the
// length field are written. Returns the new comment length and file size.
func (e *EndRecord) Patch(path string) (uint16, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	newSize := info.Size()
	commentLen, err := e.PatchedCommentLength(newSize)
	if err != nil {
		return 0, newSize, err
	}
	var field [2]byte
	binary.LittleEndian.PutUint16(field[:], commentLen)
	if err := binpatch.WriteAt(path, e.Offset, field[:]); err != nil {
		if errors.Is(err, binpatch.ErrWrite) {
			err = fmt.Errorf("could not write new comment length: %w", err)
		}
		return 0, newSize, err
	}
	return commentLen, newSize, nil
}
