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
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

func (toolConf *ToolConfig) Name() string {
	return toolConf.name
}

// Cmdline splits the tool's command into words and substitutes the input
// path for {file}. Substitution happens after splitting so paths containing
// spaces or quotes need no escaping.
func (toolConf *ToolConfig) Cmdline(file string) ([]string, error) {
	if toolConf.Command == "" {
		return nil, fmt.Errorf("Tool \"%s\" does not specify required value 'command'", toolConf.name)
	}
	words, err := shellwords.Parse(toolConf.Command)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse tool commandline: %s", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("Tool \"%s\" has an empty command", toolConf.name)
	}
	for i, word := range words {
		words[i] = strings.ReplaceAll(word, "{file}", file)
	}
	return words, nil
}
