// Copyright 2025 walteh LLC
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

package config

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config holds flag defaults for the CLI front-end. The engine itself
// takes every parameter per call; this file only pre-populates flags so a
// project can pin its usual include/exclude sets.
type Config struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"` // Default include globs
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"` // Default exclude globs

	CaseSensitive  bool `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
	Regex          bool `json:"regex,omitempty" yaml:"regex,omitempty"`
	WholeWord      bool `json:"whole_word,omitempty" yaml:"whole_word,omitempty"`
	Hidden         bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Archives       bool `json:"archives,omitempty" yaml:"archives,omitempty"`
	FollowSymlinks bool `json:"follow_symlinks,omitempty" yaml:"follow_symlinks,omitempty"`
	NoIgnores      bool `json:"no_ignores,omitempty" yaml:"no_ignores,omitempty"` // Disable the default-ignore set

	MaxMatches int `json:"max_matches,omitempty" yaml:"max_matches,omitempty"`
}

// 🎯 Load loads flag defaults from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading defaults file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading defaults file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating defaults: %w", err)
	}
	return cfg, nil
}

// ✅ Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.MaxMatches < 0 {
		return errors.Errorf("max_matches must not be negative: %d", c.MaxMatches)
	}
	return nil
}
