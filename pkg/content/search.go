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

package content

import (
	"context"
	"strings"

	"github.com/walteh/searchrc/pkg/pattern"
	"github.com/walteh/searchrc/pkg/scan"
)

// previewLimit caps the match preview length in runes
const previewLimit = 200

// 🎯 Match is one matching line, produced once and never mutated
type Match struct {
	Path      string // File path (the archive path for members)
	Line      int    // 1-based line number within the scanned content
	Preview   string // Trimmed single-line excerpt, at most 200 runes
	IsArchive bool   // Whether the match is inside an archive member
	Member    string // Entry name within the archive, if IsArchive
}

// 🔍 Search scans one candidate and returns its matches in ascending line
// order. A non-nil error is a per-candidate outcome: the coordinator treats
// it the same as zero matches, it never aborts the run. Cancellation is
// checked at the top of the line loop.
func Search(ctx context.Context, cand scan.Candidate, m *pattern.Matcher) ([]Match, error) {
	lines, err := NewSource(cand).Lines()
	if err != nil {
		return nil, err
	}

	var matches []Match
	for i, line := range lines {
		if ctx.Err() != nil {
			break
		}
		if !m.MatchString(line) {
			continue
		}
		matches = append(matches, Match{
			Path:      cand.Path,
			Line:      i + 1,
			Preview:   preview(line),
			IsArchive: cand.IsArchive,
			Member:    cand.Member,
		})
	}
	return matches, nil
}

func preview(line string) string {
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit])
	}
	return line
}
