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

package magic

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
)

type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeZIP
	FileTypeJAR
	// PE executable, e.g. a launcher with a JAR appended to it
	FileTypePECOFF
)

func (t FileType) String() string {
	switch t {
	case FileTypeZIP:
		return "zip"
	case FileTypeJAR:
		return "jar"
	case FileTypePECOFF:
		return "pecoff"
	default:
		return "unknown"
	}
}

// Detect looks at the start of a file to guess what kind of signing target it
// is.
func Detect(r io.Reader) FileType {
	var buf [1024]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && err != io.ErrUnexpectedEOF {
		return FileTypeUnknown
	}
	blob := buf[:n]
	switch {
	case bytes.HasPrefix(blob, []byte{0x50, 0x4b, 0x03, 0x04}):
		if len(blob) >= 30 {
			// JAR marker extra field on the first entry
			fnLen := int(binary.LittleEndian.Uint16(blob[26:28]))
			if len(blob) >= 32+fnLen && blob[30+fnLen] == 0xfe && blob[31+fnLen] == 0xca {
				return FileTypeJAR
			}
		}
		if bytes.Contains(blob, []byte("META-INF/")) {
			return FileTypeJAR
		}
		return FileTypeZIP
	case bytes.HasPrefix(blob, []byte("MZ")) && len(blob) >= 0x40:
		reloc := int(binary.LittleEndian.Uint16(blob[0x3c:0x3e]))
		if len(blob) >= reloc+4 && bytes.Equal(blob[reloc:reloc+4], []byte("PE\x00\x00")) {
			return FileTypePECOFF
		}
	}
	return FileTypeUnknown
}

// DetectFile opens path just long enough to detect its type.
func DetectFile(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileTypeUnknown, err
	}
	defer f.Close()
	return Detect(f), nil
}
