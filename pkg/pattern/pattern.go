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

package pattern

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ❌ ErrInvalidPattern marks a search term that does not compile as a regular
// expression. It is reported synchronously, before any file is opened.
var ErrInvalidPattern = errors.Base("invalid search pattern")

// 🎯 Options describes how a search term is interpreted
type Options struct {
	Text          string // Raw search term
	CaseSensitive bool   // Match case exactly
	Regex         bool   // Interpret Text as a regular expression
	WholeWord     bool   // Require word boundaries around a literal term
}

// 🔍 Matcher is a compiled search term. The same Matcher drives both line
// matching during search and substitution during replace, so the two always
// agree on what counts as a hit.
type Matcher struct {
	rx   *regexp.Regexp
	opts Options
}

// 🏭 Compile builds a Matcher from the given options
func Compile(opts Options) (*Matcher, error) {
	var expr string
	switch {
	case opts.Regex:
		expr = opts.Text
	case opts.WholeWord:
		expr = `\b` + regexp.QuoteMeta(opts.Text) + `\b`
	default:
		expr = regexp.QuoteMeta(opts.Text)
	}

	if !opts.CaseSensitive {
		expr = `(?i)` + expr
	}

	rx, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return &Matcher{rx: rx, opts: opts}, nil
}

// 🔍 MatchString reports whether the line contains the search term
func (m *Matcher) MatchString(line string) bool {
	return m.rx.MatchString(line)
}

// 🔄 Replace substitutes every occurrence of the search term in text.
// In regex mode the replacement may use $1-style group references. In the
// literal modes the replacement is taken verbatim; the case-sensitive
// literal path is a plain string replace, the case-insensitive one goes
// through the compiled regex so that both literal paths share semantics.
func (m *Matcher) Replace(text, replacement string) string {
	switch {
	case m.opts.Regex:
		return m.rx.ReplaceAllString(text, replacement)
	case !m.opts.Regex && !m.opts.WholeWord && m.opts.CaseSensitive:
		return strings.ReplaceAll(text, m.opts.Text, replacement)
	default:
		return m.rx.ReplaceAllLiteralString(text, replacement)
	}
}

// 📝 String returns the compiled expression, for logging
func (m *Matcher) String() string {
	return m.rx.String()
}
