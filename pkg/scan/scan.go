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

// Package scan walks a directory tree and produces the ordered candidate
// set for a search: regular files plus, when enabled, the members of zip
// and gzip-tar archives.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/searchrc/pkg/globset"
)

// 🚫 defaultIgnores are well-known directory names pruned from traversal
// unless the caller opts out.
var defaultIgnores = map[string]bool{
	".git":         true,
	"venv":         true,
	"__pycache__":  true,
	"node_modules": true,
	".idea":        true,
	".vscode":      true,
}

// 🎯 Options controls which parts of the tree are visited
type Options struct {
	IncludeHidden     bool // Visit dot-files and dot-directories
	UseDefaultIgnores bool // Prune the default-ignore directory set
	FollowSymlinks    bool // Descend into symlinked directories
	SearchArchives    bool // Pre-list members of recognized archives
}

// 📄 Candidate identifies one unit of content to scan: either a regular
// file, or a named member inside a parent archive. Archive members are
// read-only; they are never targets for replacement.
type Candidate struct {
	Path      string // Filesystem path (the archive path for members)
	IsArchive bool   // Whether this candidate is an archive member
	Member    string // Entry name within the archive, if IsArchive
}

// 🔍 IsRecognizedArchive reports whether name carries a suffix the scanner
// knows how to enumerate.
func IsRecognizedArchive(name string) bool {
	return strings.HasSuffix(name, ".zip") ||
		strings.HasSuffix(name, ".tar.gz") ||
		strings.HasSuffix(name, ".tgz")
}

// 🚶 Scan walks the tree rooted at root depth-first and returns the
// candidate set. The walk is sequential and deterministic (directory
// entries in lexical order). Cancellation is polled at the top of each
// directory; a cancelled walk returns the partial set gathered so far.
// Unreadable directories and unlistable archives are skipped, never fatal.
func Scan(ctx context.Context, root string, opts Options, filter *globset.GlobSet) []Candidate {
	s := &scanner{opts: opts, filter: filter, logger: zerolog.Ctx(ctx)}
	s.walk(ctx, root)
	return s.candidates
}

type scanner struct {
	opts       Options
	filter     *globset.GlobSet
	logger     *zerolog.Logger
	candidates []Candidate
}

func (s *scanner) walk(ctx context.Context, dir string) {
	if ctx.Err() != nil {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Debug().Str("dir", dir).Err(err).Msg("skipping unreadable directory")
		return
	}

	var subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)

		isDir, follow := s.classify(entry, full)
		if isDir {
			if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
				continue
			}
			if s.opts.UseDefaultIgnores && defaultIgnores[name] {
				continue
			}
			if follow {
				subdirs = append(subdirs, full)
			}
			continue
		}

		if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if !s.filter.Match(name) {
			continue
		}

		s.candidates = append(s.candidates, Candidate{Path: full})

		if s.opts.SearchArchives && IsRecognizedArchive(name) {
			s.listArchive(full, name)
		}
	}

	for _, sub := range subdirs {
		s.walk(ctx, sub)
	}
}

// classify resolves an entry to (isDir, shouldDescend). Symlinks are
// resolved with Stat so a link to a directory is recognized, but descent
// through links happens only when FollowSymlinks is set. A broken link is
// treated as a file; the content phase swallows the open failure.
func (s *scanner) classify(entry fs.DirEntry, full string) (isDir, follow bool) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), entry.IsDir()
	}

	info, err := os.Stat(full)
	if err != nil {
		return false, false
	}
	if !info.IsDir() {
		return false, false
	}
	return true, s.opts.FollowSymlinks
}

// listArchive expands an archive into member candidates. Both zip and
// gzip-tar archives are pre-listed. Any listing failure leaves the archive
// as an opaque plain candidate only.
func (s *scanner) listArchive(path, name string) {
	var members []string
	var err error

	if strings.HasSuffix(name, ".zip") {
		members, err = listZipMembers(path)
	} else {
		members, err = listTarMembers(path)
	}
	if err != nil {
		s.logger.Debug().Str("archive", path).Err(err).Msg("skipping unlistable archive")
		return
	}

	for _, member := range members {
		if !s.filter.Match(member) {
			continue
		}
		s.candidates = append(s.candidates, Candidate{Path: path, IsArchive: true, Member: member})
	}
}
