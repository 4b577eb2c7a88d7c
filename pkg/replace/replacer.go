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

// Package replace applies a substitution to a set of previously found
// files, writing each result crash-safely. Matching semantics are shared
// with search through pkg/pattern.
package replace

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/searchrc/pkg/content"
	"github.com/walteh/searchrc/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Target is one file selected for replacement. ID is the caller's
// handle (a result-row identifier in a front-end); the engine only needs
// Path.
type Target struct {
	ID   string
	Path string
}

// 📋 Job is a one-shot replacement request over a file set. Files are
// processed in slice order; archive members are never valid targets.
type Job struct {
	Files       []Target
	Find        pattern.Options
	Replacement string
	Backup      bool // Write a `<path>.bak` copy before each changed file
}

// 📊 EventKind identifies the payload carried by an Event
type EventKind int

const (
	EventStep  EventKind = iota // One file processed (Index, File)
	EventError                  // Per-file failure; processing continues
	EventDone                   // Terminal; Changed carries the count
	EventFatal                  // Setup failure; processing halted
)

// String returns a string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case EventStep:
		return "step"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	case EventFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// 📨 Event is one entry of the replace output stream
type Event struct {
	Kind    EventKind
	Index   int    // 1-based position in the job, for EventStep
	File    string // Base name of the file, for EventStep and EventError
	Message string // Failure description, for EventError and EventFatal
	Changed int    // Files actually rewritten, for EventDone
}

// 🏃 Apply runs the job sequentially and streams events into the sink. A
// file whose computed text equals its current text is skipped (no write,
// no backup) but still produces its step event. Per-file failures become
// error events and never stop the loop. Fatal is reserved for a job that
// cannot start at all; cancellation mid-job stops the loop and still ends
// the stream with Done carrying the partial changed count.
func Apply(ctx context.Context, job Job, events chan<- Event) {
	logger := zerolog.Ctx(ctx)

	m, err := pattern.Compile(job.Find)
	if err != nil {
		events <- Event{Kind: EventFatal, Message: err.Error()}
		return
	}

	changed := 0
	for i, target := range job.Files {
		if ctx.Err() != nil {
			logger.Debug().Int("remaining", len(job.Files)-i).Msg("replace cancelled")
			break
		}

		didChange, err := applyFile(target.Path, m, job.Replacement, job.Backup)
		if err != nil {
			logger.Debug().Str("path", target.Path).Err(err).Msg("replace failed for file")
			events <- Event{Kind: EventError, File: filepath.Base(target.Path), Message: err.Error()}
			continue
		}
		if didChange {
			changed++
		}
		events <- Event{Kind: EventStep, Index: i + 1, File: filepath.Base(target.Path)}
	}

	logger.Debug().Int("changed", changed).Int("total", len(job.Files)).Msg("replace finished")
	events <- Event{Kind: EventDone, Changed: changed}
}

// applyFile computes and, when the text differs, atomically writes the
// replacement for one file.
func applyFile(path string, m *pattern.Matcher, replacement string, backup bool) (bool, error) {
	oldText, err := readText(path)
	if err != nil {
		return false, err
	}

	newText := m.Replace(oldText, replacement)
	if newText == oldText {
		return false, nil
	}

	if err := WriteAtomic(path, newText, backup); err != nil {
		return false, err
	}
	return true, nil
}

// readText reads the whole file under the same decoding policy as the
// search path: UTF-8 with one replacement rune per invalid byte.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("reading file: %w", err)
	}
	return content.Decode(data), nil
}
