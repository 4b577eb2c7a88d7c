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
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/searchrc/pkg/pattern"
	"github.com/walteh/searchrc/pkg/replace"
	"github.com/walteh/searchrc/pkg/search"
	"gitlab.com/tozd/go/errors"
)

func newReplaceCmd() *cobra.Command {
	flags := &searchFlags{}
	var (
		backup bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "replace PATTERN REPLACEMENT [ROOT]",
		Short: "Search, then safely rewrite every matching plain-text file",
		Long: `Runs a search for PATTERN, collects the plain files that matched
(archive members are never rewritten), and substitutes REPLACEMENT in each
one using an atomic temp-file-and-rename write. Use --dry-run to preview
the changes as a diff without touching any file.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := loggerContext(cmd.Context())

			root := "."
			if len(args) > 2 {
				root = args[2]
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

			files, err := findTargets(ctx, flags, args[0], root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				pterm.Info.Println("No text files found to edit.")
				return nil
			}

			job := replace.Job{
				Files: files,
				Find: pattern.Options{
					Text:          args[0],
					CaseSensitive: flags.caseSensitive,
					Regex:         flags.regex,
					WholeWord:     flags.wholeWord,
				},
				Replacement: args[1],
				Backup:      backup,
			}

			if dryRun {
				return previewJob(job)
			}
			return runJob(ctx, job)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&backup, "backup", "b", true, "write <path>.bak copies before changing files")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show pending changes without writing")
	return cmd
}

// findTargets runs a search and returns the unique plain files that
// matched, in sorted order. Archive members are dropped: they are
// read-only.
func findTargets(ctx context.Context, flags *searchFlags, text, root string) ([]replace.Target, error) {
	engine, err := search.New(flags.options(text), splitGlobs(flags.include), splitGlobs(flags.exclude))
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var paths []string
	for ev := range engine.Start(ctx, root) {
		if ev.Kind != search.EventMatch || ev.Match.IsArchive {
			continue
		}
		if !seen[ev.Match.Path] {
			seen[ev.Match.Path] = true
			paths = append(paths, ev.Match.Path)
		}
	}
	sort.Strings(paths)

	targets := make([]replace.Target, 0, len(paths))
	for i, p := range paths {
		targets = append(targets, replace.Target{ID: fmt.Sprintf("%d", i), Path: p})
	}
	return targets, nil
}

// previewJob prints the pending diff for every target
func previewJob(job replace.Job) error {
	for _, target := range job.Files {
		diff, err := replace.Preview(target.Path, job)
		if err != nil {
			pterm.Error.Printf("%s: %v\n", target.Path, err)
			continue
		}
		if diff == "" {
			continue
		}
		pterm.DefaultSection.Println(target.Path)
		fmt.Println(diff)
	}
	return nil
}

// runJob applies the job with a progress bar driven by step events
func runJob(ctx context.Context, job replace.Job) error {
	bar, err := pterm.DefaultProgressbar.WithTotal(len(job.Files)).WithTitle("Replacing").Start()
	if err != nil {
		return errors.Errorf("starting progress bar: %w", err)
	}

	events := make(chan replace.Event, 64)
	go func() {
		defer close(events)
		replace.Apply(ctx, job, events)
	}()

	var fatal error
	for ev := range events {
		switch ev.Kind {
		case replace.EventStep:
			bar.UpdateTitle(ev.File)
			bar.Increment()
		case replace.EventError:
			pterm.Error.Printf("%s: %s\n", ev.File, ev.Message)
			bar.Increment()
		case replace.EventDone:
			pterm.Success.Printf("Updated %d files.\n", ev.Changed)
		case replace.EventFatal:
			fatal = errors.Errorf("replace failed: %s", ev.Message)
		}
	}
	if _, err := bar.Stop(); err != nil {
		return errors.Errorf("stopping progress bar: %w", err)
	}
	return fatal
}
