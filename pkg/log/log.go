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

// Package log renders the search event stream for terminal consumers.
package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/walteh/searchrc/pkg/content"
	"github.com/walteh/searchrc/pkg/search"
)

// 🎨 Display configuration
var (
	pathColor    = color.New(color.FgCyan)
	lineColor    = color.New(color.FgYellow)
	memberColor  = color.New(color.FgMagenta)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	summaryColor = color.New(color.FgGreen, color.Bold)
)

// 🖥️ Reporter writes search events to a console. It is safe for use from a
// single draining goroutine; the mutex only guards against interleaving
// with progress output from another writer.
type Reporter struct {
	console  io.Writer
	mu       sync.Mutex
	progress bool // Also render progress snapshots
}

// 🏭 NewReporter creates a reporter writing to console
func NewReporter(console io.Writer, progress bool) *Reporter {
	return &Reporter{console: console, progress: progress}
}

// 📨 Handle renders one search event
func (r *Reporter) Handle(ev search.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case search.EventMatch:
		fmt.Fprintln(r.console, FormatMatch(ev.Match))
	case search.EventProgress:
		if r.progress {
			fmt.Fprintf(r.console, "… scanned %d/%d files, %d matches\n",
				ev.Stats.ScannedFiles, ev.Stats.TotalCandidates, ev.Stats.MatchesFound)
		}
	case search.EventWarn:
		warnColor.Fprintf(r.console, "⚠️  %s\n", ev.Message)
	case search.EventError:
		errorColor.Fprintf(r.console, "❌ %s\n", ev.Message)
	case search.EventDone:
		summaryColor.Fprintf(r.console, "✅ %d matches in %d files (%s)\n",
			ev.Stats.MatchesFound, ev.Stats.ScannedFiles,
			time.Since(ev.Stats.StartTime).Round(time.Millisecond))
	}
}

// 📄 FormatMatch renders one match as `path:line: preview`; matches inside
// archives are rendered as `archive!member:line: preview`.
func FormatMatch(m *content.Match) string {
	location := pathColor.Sprint(m.Path)
	if m.IsArchive {
		location += "!" + memberColor.Sprint(m.Member)
	}
	return fmt.Sprintf("%s:%s: %s", location, lineColor.Sprintf("%d", m.Line), m.Preview)
}
