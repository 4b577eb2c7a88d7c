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

// Package globset evaluates include/exclude glob sets against file names
// and archive entry names.
package globset

import (
	"github.com/bmatcuk/doublestar/v4"
)

// 🗂️ GlobSet is an ordered pair of include and exclude glob pattern lists.
// An empty include list matches everything; any exclude hit vetoes.
type GlobSet struct {
	include []string
	exclude []string
}

// 🏭 New creates a GlobSet from raw pattern lists
func New(include, exclude []string) *GlobSet {
	return &GlobSet{include: include, exclude: exclude}
}

// 🔍 Match reports whether name passes the set. Names are bare file names
// for regular files and entry names for archive members; patterns use
// doublestar semantics (`*`, `?`, bracket classes, `**` across separators).
// A pattern that fails to parse never matches.
func (g *GlobSet) Match(name string) bool {
	if len(g.include) > 0 && !g.anyMatch(g.include, name) {
		return false
	}
	return !g.anyMatch(g.exclude, name)
}

func (g *GlobSet) anyMatch(patterns []string, name string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, name)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
