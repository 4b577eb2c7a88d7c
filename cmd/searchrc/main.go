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
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/searchrc/pkg/config"
)

var (
	// Flags
	configFile string
	debug      bool
)

// defaultsCandidates are probed in order when --config is not given
var defaultsCandidates = []string{".searchrc.yaml", ".searchrc.yml", ".searchrc.hcl"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := &cobra.Command{
		Use:           "searchrc",
		Short:         "Concurrent file content search and safe bulk replace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "defaults file path (.searchrc.yaml or .searchrc.hcl)")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(newSearchCmd())
	root.AddCommand(newReplaceCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		zerolog.Ctx(loggerContext(ctx)).Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loggerContext attaches a console logger at the level selected by --debug
func loggerContext(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// loadDefaults loads the flag defaults file. Without --config the well
// known names are probed in the working directory; a missing file simply
// yields zero defaults.
func loadDefaults(ctx context.Context) (*config.Config, error) {
	if configFile != "" {
		return config.Load(ctx, configFile)
	}
	for _, name := range defaultsCandidates {
		if _, err := os.Stat(name); err == nil {
			return config.Load(ctx, name)
		}
	}
	return &config.Config{}, nil
}

// splitGlobs splits a semicolon-separated glob list
func splitGlobs(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ";") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
