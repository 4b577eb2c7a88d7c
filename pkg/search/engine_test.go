package search

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/searchrc/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// collect runs a search to completion and groups the events by kind
func collect(t *testing.T, opts Options, include, exclude []string, root string) map[EventKind][]Event {
	t.Helper()
	engine, err := New(opts, include, exclude)
	require.NoError(t, err)

	byKind := map[EventKind][]Event{}
	for ev := range engine.Start(context.Background(), root) {
		byKind[ev.Kind] = append(byKind[ev.Kind], ev)
	}
	return byKind
}

func TestEngine_InvalidPatternFailsBeforeScanning(t *testing.T) {
	_, err := New(Options{Text: `fo(o`, Regex: true}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pattern.ErrInvalidPattern))
}

func TestEngine_BasicRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "needle\nhay\nneedle again\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "nothing here\n")

	got := collect(t, Options{Text: "needle"}, nil, nil, dir)

	require.Len(t, got[EventDone], 1)
	done := got[EventDone][0].Stats
	assert.Equal(t, 2, done.TotalCandidates)
	assert.Equal(t, 2, done.ScannedFiles)
	assert.Equal(t, 2, done.MatchesFound)

	require.Len(t, got[EventMatch], 2)
	assert.Equal(t, 1, got[EventMatch][0].Match.Line)
	assert.Equal(t, 3, got[EventMatch][1].Match.Line)
	assert.Empty(t, got[EventWarn])

	// The enumeration-phase progress event carries the candidate total.
	require.NotEmpty(t, got[EventProgress])
	assert.Equal(t, 2, got[EventProgress][0].Stats.TotalCandidates)
	assert.Equal(t, 0, got[EventProgress][0].Stats.ScannedFiles)
}

func TestEngine_PerCandidateLineOrder(t *testing.T) {
	dir := t.TempDir()
	content := ""
	for i := 1; i <= 20; i++ {
		if i%3 == 0 {
			content += "needle\n"
		} else {
			content += "hay\n"
		}
	}
	writeFile(t, filepath.Join(dir, "a.txt"), content)

	got := collect(t, Options{Text: "needle"}, nil, nil, dir)

	last := 0
	for _, ev := range got[EventMatch] {
		assert.Greater(t, ev.Match.Line, last)
		last = ev.Match.Line
	}
}

func TestEngine_GlobFiltering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "needle\n")
	writeFile(t, filepath.Join(dir, "b.log"), "needle\n")

	got := collect(t, Options{Text: "needle"}, []string{"*.txt"}, nil, dir)
	require.Len(t, got[EventMatch], 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), got[EventMatch][0].Match.Path)
}

func TestEngine_MatchCeiling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "needle\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "needle\n")

	got := collect(t, Options{Text: "needle", MaxMatches: 1}, nil, nil, dir)

	assert.Len(t, got[EventWarn], 1)
	assert.Len(t, got[EventMatch], 1)
	require.Len(t, got[EventDone], 1)
	assert.Equal(t, 1, got[EventDone][0].Stats.MatchesFound)
}

func TestEngine_CeilingKeepsCrossingTaskMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "needle\nneedle\nneedle\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "needle\nneedle\nneedle\n")

	got := collect(t, Options{Text: "needle", MaxMatches: 2}, nil, nil, dir)

	// The first completing task crosses the ceiling mid-task and keeps its
	// full match set; the second completion only triggers the warning.
	assert.Len(t, got[EventMatch], 3)
	assert.Len(t, got[EventWarn], 1)
}

func TestEngine_ArchiveSearch(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeZip(t, archive, map[string]string{"hello.txt": "needle\n"})

	got := collect(t, Options{Text: "needle", SearchArchives: true}, nil, nil, dir)
	require.Len(t, got[EventMatch], 1)
	m := got[EventMatch][0].Match
	assert.True(t, m.IsArchive)
	assert.Equal(t, "hello.txt", m.Member)
	assert.Equal(t, archive, m.Path)

	// Disabled: the zip is only scanned as an opaque (binary) file.
	got = collect(t, Options{Text: "needle"}, nil, nil, dir)
	assert.Empty(t, got[EventMatch])
}

func TestEngine_FailedCandidatesAreSilent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.txt"), "needle\n")
	// A dangling symlink enumerates as a file but fails to open.
	require.NoError(t, os.Symlink(filepath.Join(dir, "absent"), filepath.Join(dir, "broken.txt")))

	got := collect(t, Options{Text: "needle"}, nil, nil, dir)
	require.Len(t, got[EventDone], 1)
	assert.Len(t, got[EventMatch], 1)
	assert.Equal(t, 2, got[EventDone][0].Stats.ScannedFiles)
}

func TestEngine_ExternalCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("f%02d.txt", i)), "needle\n")
	}

	engine, err := New(Options{Text: "needle"}, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var done int
	for ev := range engine.Start(ctx, dir) {
		if ev.Kind == EventDone {
			done++
		}
	}
	assert.Equal(t, 1, done)
}

func TestEngine_ProgressEventsEveryFiftyCompletions(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 120; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("f%03d.txt", i)), "hay\n")
	}

	got := collect(t, Options{Text: "needle"}, nil, nil, dir)

	// One enumeration event plus one per 50 completions.
	require.Len(t, got[EventProgress], 3)
	scanned := []int{}
	for _, ev := range got[EventProgress] {
		scanned = append(scanned, ev.Stats.ScannedFiles)
	}
	assert.Equal(t, []int{0, 50, 100}, scanned)
}
