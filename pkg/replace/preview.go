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
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/walteh/searchrc/pkg/pattern"
)

// 👀 Preview renders the pending change for one file as a colored inline
// diff, without touching the file. It mirrors Apply exactly: same matcher,
// same decode policy, so what the preview shows is what Apply writes.
func Preview(path string, job Job) (string, error) {
	m, err := pattern.Compile(job.Find)
	if err != nil {
		return "", err
	}

	oldText, err := readText(path)
	if err != nil {
		return "", err
	}
	newText := m.Replace(oldText, job.Replacement)
	if newText == oldText {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs), nil
}
