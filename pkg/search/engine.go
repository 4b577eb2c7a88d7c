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

// Package search coordinates a full search run: candidate enumeration,
// concurrent content scanning over a bounded worker pool, and the typed
// event stream consumed by front-ends.
package search

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/searchrc/pkg/content"
	"github.com/walteh/searchrc/pkg/globset"
	"github.com/walteh/searchrc/pkg/pattern"
	"github.com/walteh/searchrc/pkg/scan"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxMatches is the match ceiling applied when Options.MaxMatches
	// is zero.
	DefaultMaxMatches = 5000

	// progressInterval is how many task completions pass between progress
	// events.
	progressInterval = 50

	// maxWorkers caps the scan pool regardless of available parallelism
	maxWorkers = 32
)

// 🎯 Options describe one search run. Immutable for its duration.
type Options struct {
	Text          string // Search term
	CaseSensitive bool   // Match case exactly
	Regex         bool   // Interpret Text as a regular expression
	WholeWord     bool   // Require word boundaries around a literal term

	IncludeHidden     bool // Visit dot-files and dot-directories
	UseDefaultIgnores bool // Prune well-known directories (.git, node_modules, ...)
	FollowSymlinks    bool // Descend into symlinked directories
	SearchArchives    bool // Scan members of zip and gzip-tar archives

	MaxMatches int // Match ceiling; 0 means DefaultMaxMatches
}

func (o Options) pattern() pattern.Options {
	return pattern.Options{
		Text:          o.Text,
		CaseSensitive: o.CaseSensitive,
		Regex:         o.Regex,
		WholeWord:     o.WholeWord,
	}
}

func (o Options) scan() scan.Options {
	return scan.Options{
		IncludeHidden:     o.IncludeHidden,
		UseDefaultIgnores: o.UseDefaultIgnores,
		FollowSymlinks:    o.FollowSymlinks,
		SearchArchives:    o.SearchArchives,
	}
}

// 🚂 Engine runs searches. One Engine is built per search invocation; the
// pattern is compiled up front so configuration errors surface before any
// file is opened.
type Engine struct {
	opts    Options
	matcher *pattern.Matcher
	filter  *globset.GlobSet
	runID   string
}

// 🏭 New compiles the pattern and glob sets for a run. An invalid pattern
// returns an error wrapping pattern.ErrInvalidPattern; no events are
// emitted in that case.
func New(opts Options, include, exclude []string) (*Engine, error) {
	m, err := pattern.Compile(opts.pattern())
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:    opts,
		matcher: m,
		filter:  globset.New(include, exclude),
		runID:   uuid.NewString(),
	}, nil
}

// taskResult is the per-candidate outcome crossing the pool boundary. A
// failed candidate carries err and no matches; the coordinator treats it
// identically to an empty result.
type taskResult struct {
	cand    scan.Candidate
	matches []content.Match
	err     error
}

// 🏃 Run executes the search and streams events into the sink. It blocks
// until the terminal Done event has been sent, which happens exactly once,
// after every dispatched task has completed or been abandoned. Cancel the
// context to stop early; reaching the match ceiling cancels internally.
// The caller must drain the sink promptly.
func (e *Engine) Run(ctx context.Context, root string, events chan<- Event) {
	logger := zerolog.Ctx(ctx).With().Str("run_id", e.runID).Logger()
	ctx = logger.WithContext(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stats := Stats{StartTime: time.Now()}
	maxMatches := e.opts.MaxMatches
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}

	// Enumeration phase: the whole candidate list is materialized before
	// scanning begins.
	candidates := scan.Scan(runCtx, root, e.opts.scan(), e.filter)
	stats.TotalCandidates = len(candidates)
	logger.Debug().Int("candidates", len(candidates)).Str("pattern", e.matcher.String()).Msg("enumeration complete")
	events <- Event{Kind: EventProgress, Stats: stats}

	// Execution phase. Workers never touch the counters: they hand results
	// to the coordinating goroutine over the completion channel, and that
	// goroutine is the only writer of stats.
	results := make(chan taskResult)
	go func() {
		defer close(results)
		var g errgroup.Group
		g.SetLimit(poolSize())
		for _, cand := range candidates {
			if runCtx.Err() != nil {
				break
			}
			cand := cand
			g.Go(func() error {
				matches, err := content.Search(runCtx, cand, e.matcher)
				results <- taskResult{cand: cand, matches: matches, err: err}
				return nil
			})
		}
		_ = g.Wait() // workers report through the channel, never an error
	}()

	ceilingHit := false
	for res := range results {
		stats.ScannedFiles++
		if stats.ScannedFiles%progressInterval == 0 {
			events <- Event{Kind: EventProgress, Stats: stats}
		}

		if res.err != nil {
			logger.Debug().Str("path", res.cand.Path).Err(res.err).Msg("candidate failed, treated as empty")
			continue
		}
		if ceilingHit {
			continue
		}

		// The ceiling is checked between task completions, never mid-task:
		// the task that crosses it still contributes its full match set.
		if stats.MatchesFound >= maxMatches {
			events <- Event{Kind: EventWarn, Message: fmt.Sprintf("max matches (%d) reached, search stopped", maxMatches)}
			cancel()
			ceilingHit = true
			continue
		}
		if len(res.matches) == 0 {
			continue
		}

		stats.MatchesFound += len(res.matches)
		for i := range res.matches {
			events <- Event{Kind: EventMatch, Match: &res.matches[i], Stats: stats}
		}
	}

	logger.Debug().
		Int("scanned", stats.ScannedFiles).
		Int("matches", stats.MatchesFound).
		Dur("elapsed", time.Since(stats.StartTime)).
		Msg("search finished")
	events <- Event{Kind: EventDone, Stats: stats}
}

// 🚀 Start runs the search on its own goroutine and returns the event
// stream. The channel is closed after the Done event.
func (e *Engine) Start(ctx context.Context, root string) <-chan Event {
	events := make(chan Event, 256)
	go func() {
		defer close(events)
		e.Run(ctx, root, events)
	}()
	return events
}

// poolSize matches the classic I/O-bound heuristic: a small multiple of
// available parallelism, capped.
func poolSize() int {
	n := runtime.NumCPU() + 4
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}
