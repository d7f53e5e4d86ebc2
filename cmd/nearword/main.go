// Copyright 2025 The Nearword Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the nearword command: approximate word lookup
backed by a length-bucketed cluster tree.

Note: This is a BETA release. APIs and functionality may rapidly change.

nearword trains a model from a word list, saves it (optionally compressed),
and answers "which known keys are closest to this query" either interactively
or as a MessagePack IPC server for editors and other tools.

# Usage

Train a model from a word list with one "word (classes)" entry per line:

	nearword train -o english.lss.zst english.words

Explore it interactively:

	nearword -m english.lss.zst repl

Serve lookups over stdin/stdout, with prometheus metrics on :9464:

	nearword -m english.lss.zst serve --metrics-addr :9464

Print the cluster tree:

	nearword -m english.lss.zst dump --keys

# Configuration

Runtime configuration lives in $XDG_CONFIG_HOME/nearword/config.toml and is
created with defaults when missing:

	[index]
	normalize = "lower"
	split_width = 12.0

	[model]
	path = "model.lss"
	compression_level = 3

	[server]
	max_limit = 64
	default_limit = 10
	max_query = 60
	cache_size = 1024
	metrics_addr = ""

	[cli]
	default_limit = 10
	filter_input = false

Flags override the file. A model must be loaded with the same normalizer it
was trained with.

# Model Files

The extension selects the compression: ".zst" for zstd, ".lz4" for lz4 and
anything else for the plain encoded tree.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/bastiangx/nearword/internal/logger"
)

const (
	Version = "0.1.0-beta"
	AppName = "nearword"
	gh      = "https://github.com/bastiangx/nearword"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func newApp() *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "approximate word lookup over a trained model",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "toggle debug logging",
				EnvVars: []string{"NEARWORD_DEBUG"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.toml",
				EnvVars: []string{"NEARWORD_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "model file (overrides [model] path)",
				EnvVars: []string{"NEARWORD_MODEL"},
			},
			&cli.StringFlag{
				Name:  "normalize",
				Usage: "key normalization: none, lower or fold (overrides [index] normalize)",
			},
			&cli.Float64Flag{
				Name:  "split-width",
				Usage: "cluster width that triggers a split (overrides [index] split_width)",
			},
		},
		Before: func(cctx *cli.Context) error {
			logger.Setup(cctx.Bool("debug"))
			return nil
		},
		Commands: []*cli.Command{
			trainCmd,
			replCmd,
			serveCmd,
			dumpCmd,
			versionCmd,
		},
	}
}

// main only wires the commands; each command lives in commands.go.
func main() {
	sigHandler()
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var versionCmd = &cli.Command{
	Name:  "version",
	Usage: "show version information",
	Action: func(cctx *cli.Context) error {
		showVersion()
		return nil
	},
}

// showVersion prints the banner to stderr.
func showVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ nearword ] Finds the closest words, fast!")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}
