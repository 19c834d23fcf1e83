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
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	Version = "unknown" // set this at link time
	Commit  = "unknown" // set this at link time
)

type ToolConfig struct {
	Command string // Command line to run; {file} is replaced by the input path (required)

	name string
}

type Config struct {
	Verbose  bool   // Log debug messages
	Quote    bool   // Quote each word of a command given on the command line
	LogLevel string // zerolog level name, default info
	LogFile  string // "" for console, "-" for JSON on stderr, or a path
	Tools    map[string]*ToolConfig
}

func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	config := new(Config)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, config.Normalize()
}

func (config *Config) Normalize() error {
	for toolName, toolConf := range config.Tools {
		if toolConf == nil {
			return fmt.Errorf("Tool \"%s\" has no settings", toolName)
		}
		toolConf.name = toolName
	}
	return nil
}

func (config *Config) GetTool(toolName string) (*ToolConfig, error) {
	if config.Tools == nil {
		return nil, errors.New("No tools defined in configuration")
	}
	toolConf, ok := config.Tools[toolName]
	if !ok {
		return nil, fmt.Errorf("Tool \"%s\" not found in configuration", toolName)
	} else if toolConf.Command == "" {
		return nil, fmt.Errorf("Tool \"%s\" does not specify required value 'command'", toolName)
	}
	return toolConf, nil
}
