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

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/searchrc/pkg/config"
	"github.com/walteh/searchrc/pkg/log"
	"github.com/walteh/searchrc/pkg/search"
	"gitlab.com/tozd/go/errors"
)

// searchFlags mirror search.Options plus the glob lists
type searchFlags struct {
	include        string
	exclude        string
	caseSensitive  bool
	regex          bool
	wholeWord      bool
	hidden         bool
	archives       bool
	followSymlinks bool
	noIgnores      bool
	maxMatches     int
	progress       bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.include, "include", "i", "", "semicolon-separated include globs (empty matches all)")
	cmd.Flags().StringVarP(&f.exclude, "exclude", "x", "", "semicolon-separated exclude globs")
	cmd.Flags().BoolVar(&f.caseSensitive, "case", false, "match case exactly")
	cmd.Flags().BoolVarP(&f.regex, "regex", "e", false, "interpret the pattern as a regular expression")
	cmd.Flags().BoolVarP(&f.wholeWord, "word", "w", false, "match whole words only")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "search hidden files and directories")
	cmd.Flags().BoolVarP(&f.archives, "archives", "a", false, "search inside zip and tar.gz archives")
	cmd.Flags().BoolVar(&f.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&f.noIgnores, "no-default-ignores", false, "do not prune .git, node_modules, and friends")
	cmd.Flags().IntVar(&f.maxMatches, "max-matches", 0, "stop after this many matches (0 = default ceiling)")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "print progress snapshots")
}

// applyDefaults fills in values from the defaults file for flags the user
// did not set explicitly.
func (f *searchFlags) applyDefaults(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if !set("include") && len(cfg.Include) > 0 {
		f.include = strings.Join(cfg.Include, ";")
	}
	if !set("exclude") && len(cfg.Exclude) > 0 {
		f.exclude = strings.Join(cfg.Exclude, ";")
	}
	if !set("case") {
		f.caseSensitive = cfg.CaseSensitive
	}
	if !set("regex") {
		f.regex = cfg.Regex
	}
	if !set("word") {
		f.wholeWord = cfg.WholeWord
	}
	if !set("hidden") {
		f.hidden = cfg.Hidden
	}
	if !set("archives") {
		f.archives = cfg.Archives
	}
	if !set("follow-symlinks") {
		f.followSymlinks = cfg.FollowSymlinks
	}
	if !set("no-default-ignores") {
		f.noIgnores = cfg.NoIgnores
	}
	if !set("max-matches") {
		f.maxMatches = cfg.MaxMatches
	}
}

func (f *searchFlags) options(text string) search.Options {
	return search.Options{
		Text:              text,
		CaseSensitive:     f.caseSensitive,
		Regex:             f.regex,
		WholeWord:         f.wholeWord,
		IncludeHidden:     f.hidden,
		UseDefaultIgnores: !f.noIgnores,
		FollowSymlinks:    f.followSymlinks,
		SearchArchives:    f.archives,
		MaxMatches:        f.maxMatches,
	}
}

func newSearchCmd() *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search PATTERN [ROOT]",
		Short: "Search file contents under a directory tree",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := loggerContext(cmd.Context())

			root := "."
			if len(args) > 1 {
				root = args[1]
			}
			info, err := os.Stat(root)
			if err != nil || !info.IsDir() {
				return errors.Errorf("invalid start directory: %s", root)
			}

			cfg, err := loadDefaults(ctx)
			if err != nil {
				return errors.Errorf("loading defaults: %w", err)
			}
			flags.applyDefaults(cmd, cfg)

			engine, err := search.New(flags.options(args[0]), splitGlobs(flags.include), splitGlobs(flags.exclude))
			if err != nil {
				return err
			}

			reporter := log.NewReporter(os.Stdout, flags.progress)
			for ev := range engine.Start(ctx, root) {
				reporter.Handle(ev)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
