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

// Package content extracts lines from a single candidate (regular file,
// zip member, or gzip-tar member) and scans them for matches.
package content

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/walteh/searchrc/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

const (
	// MaxFileSize is the cap above which regular files are skipped
	MaxFileSize = 10 * 1024 * 1024

	// binaryProbeSize is how many leading bytes are checked for NUL
	binaryProbeSize = 1024
)

// 📖 Source is one unit of readable content. Each variant owns its own
// open/extract/decode logic; Lines returns (nil, nil) for content that is
// deliberately skipped (oversized or binary regular files).
type Source interface {
	Lines() ([]string, error)
}

// 🏭 NewSource resolves a candidate to its content variant
func NewSource(cand scan.Candidate) Source {
	if !cand.IsArchive {
		return &FileSource{Path: cand.Path}
	}
	if strings.HasSuffix(cand.Path, ".zip") {
		return &ZipMemberSource{Archive: cand.Path, Member: cand.Member}
	}
	return &TarMemberSource{Archive: cand.Path, Member: cand.Member}
}

// 📄 FileSource reads a regular file
type FileSource struct {
	Path string
}

func (s *FileSource) Lines() ([]string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, errors.Errorf("statting file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, nil
	}

	binary, err := isBinary(s.Path)
	if err != nil || binary {
		// Unreadable files are conservatively treated as binary.
		return nil, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return splitLines(Decode(data)), nil
}

// 🗜️ ZipMemberSource extracts one named member of a zip archive into memory
type ZipMemberSource struct {
	Archive string
	Member  string
}

func (s *ZipMemberSource) Lines() ([]string, error) {
	r, err := zip.OpenReader(s.Archive)
	if err != nil {
		return nil, errors.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != s.Member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Errorf("opening zip member: %w", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Errorf("extracting zip member: %w", err)
		}
		return splitLines(Decode(data)), nil
	}
	return nil, errors.Errorf("member %q not found in %s", s.Member, s.Archive)
}

// 🗜️ TarMemberSource extracts one named member of a gzip-tar archive by
// streaming the archive until the member is reached
type TarMemberSource struct {
	Archive string
	Member  string
}

func (s *TarMemberSource) Lines() ([]string, error) {
	f, err := os.Open(s.Archive)
	if err != nil {
		return nil, errors.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Errorf("reading gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Errorf("reading tar header: %w", err)
		}
		if hdr.Name != s.Member || hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.Errorf("extracting tar member: %w", err)
		}
		return splitLines(Decode(data)), nil
	}
	return nil, errors.Errorf("member %q not found in %s", s.Member, s.Archive)
}

// isBinary checks the first block of the file for NUL bytes
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return true, err
	}
	defer f.Close()

	buf := make([]byte, binaryProbeSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true, err
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

// Decode interprets data as UTF-8 with one U+FFFD per invalid byte, so a
// run of N undecodable bytes yields N replacement runes.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[:size])
		}
		data = data[size:]
	}
	return b.String()
}

// splitLines splits decoded text into lines without terminators. A single
// trailing newline does not produce an empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
