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

package config

import (
	"os"
	"path/filepath"
)

// DefaultDir returns the per-user directory holding sign4j.yaml, or "" if no
// home directory can be determined.
func DefaultDir() string {
	if profile := os.Getenv("USERPROFILE"); profile != "" {
		// windows
		return filepath.Join(profile, "sign4j")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); filepath.IsAbs(xdg) {
		return filepath.Join(xdg, "sign4j")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "sign4j")
	}
	return ""
}

func DefaultConfig() string {
	dir := DefaultDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "sign4j.yaml")
}
