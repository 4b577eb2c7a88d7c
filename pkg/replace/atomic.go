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

package replace

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// 💾 WriteAtomic writes content to path so that the file transitions from
// old content to new content in a single rename: a truncated target is
// never observable. The sequence is temp file in the target's directory,
// optional `<path>.bak` backup preserving metadata, rename over the
// target. Any failure after the temp file exists removes it and leaves the
// target untouched.
func WriteAtomic(path, content string, makeBackup bool) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".searchrc-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = os.Remove(tmpName)
		return cause
	}

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return cleanup(errors.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(errors.Errorf("closing temp file: %w", err))
	}

	// Carry the target's mode over; CreateTemp defaults to 0600.
	mode := os.FileMode(0644)
	info, statErr := os.Stat(path)
	if statErr == nil {
		mode = info.Mode()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return cleanup(errors.Errorf("setting temp file mode: %w", err))
	}

	if makeBackup && statErr == nil {
		if err := backupFile(path, path+".bak"); err != nil {
			return cleanup(errors.Errorf("creating backup: %w", err))
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return cleanup(errors.Errorf("replacing file: %w", err))
	}
	return nil
}

// backupFile copies src to dst, preserving mode and modification time
func backupFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("statting source: %w", err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Errorf("reading source: %w", err)
	}
	if err := os.WriteFile(dst, data, info.Mode()); err != nil {
		return errors.Errorf("writing backup: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("preserving times: %w", err)
	}
	return nil
}
