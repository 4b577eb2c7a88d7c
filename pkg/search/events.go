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

package search

import (
	"time"

	"github.com/walteh/searchrc/pkg/content"
)

// 📊 EventKind identifies the payload carried by an Event
type EventKind int

const (
	EventProgress EventKind = iota // Stats snapshot
	EventMatch                     // One match, plus the Stats at emit time
	EventWarn                      // Human-readable warning (e.g. match ceiling)
	EventError                     // Human-readable non-fatal error
	EventDone                      // Final Stats; emitted exactly once
)

// String returns a string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventMatch:
		return "match"
	case EventWarn:
		return "warn"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// 📈 Stats are the run counters. They are owned by the coordinating
// goroutine; consumers only ever see value snapshots inside events.
type Stats struct {
	ScannedFiles    int       // Candidates whose scan task has completed
	TotalCandidates int       // Size of the enumerated candidate set
	MatchesFound    int       // Matches emitted so far
	StartTime       time.Time // When the run began
}

// 📨 Event is one entry of the search output stream
type Event struct {
	Kind    EventKind
	Match   *content.Match // Set for EventMatch
	Stats   Stats          // Snapshot; set for EventProgress, EventMatch, EventDone
	Message string         // Set for EventWarn and EventError
}
