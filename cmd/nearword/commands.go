package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	inputcli "github.com/bastiangx/nearword/internal/cli"
	"github.com/bastiangx/nearword/internal/metrics"
	"github.com/bastiangx/nearword/internal/utils"
	"github.com/bastiangx/nearword/pkg/config"
	"github.com/bastiangx/nearword/pkg/dictionary"
	"github.com/bastiangx/nearword/pkg/server"
	"github.com/bastiangx/nearword/pkg/store"
	"github.com/bastiangx/nearword/pkg/stringset"
)

// loadConfig resolves the config file and applies the global flag overrides.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg, path, err := config.LoadConfigWithPriority(cctx.String("config"))
	if err != nil {
		return nil, err
	}
	log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(path))
	if cctx.IsSet("model") {
		cfg.Model.Path = cctx.String("model")
	}
	if cctx.IsSet("normalize") {
		cfg.Index.Normalize = cctx.String("normalize")
	}
	if cctx.IsSet("split-width") {
		cfg.Index.SplitWidth = cctx.Float64("split-width")
	}
	return cfg, nil
}

// openModel loads the configured model. With allowMissing a missing file
// yields an empty index.
func openModel(cfg *config.Config, allowMissing bool) (*stringset.Index, error) {
	opts, err := cfg.IndexOptions()
	if err != nil {
		return nil, err
	}
	idx, err := store.Load(cfg.Model.Path, opts...)
	if err == nil {
		return idx, nil
	}
	if allowMissing && errors.Is(err, fs.ErrNotExist) {
		log.Warnf("No model at %s, running with an empty index...", cfg.Model.Path)
		return stringset.New(opts...), nil
	}
	return nil, err
}

var trainCmd = &cli.Command{
	Name:      "train",
	Usage:     "build a model from word lists",
	ArgsUsage: "<wordlist>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "model file to write (defaults to the configured model)",
		},
		&cli.IntFlag{
			Name:  "level",
			Usage: "compression level for .zst and .lz4 models",
		},
		&cli.BoolFlag{
			Name:  "append",
			Usage: "add to the existing model instead of starting empty",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() == 0 {
			return cli.Exit("train needs at least one word list", 1)
		}
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		out := cfg.Model.Path
		if cctx.IsSet("out") {
			out = cctx.String("out")
			cfg.Model.Path = out
		}
		level := cfg.Model.CompressionLevel
		if cctx.IsSet("level") {
			level = cctx.Int("level")
		}

		var idx *stringset.Index
		if cctx.Bool("append") {
			idx, err = openModel(cfg, true)
		} else {
			var opts []stringset.Option
			opts, err = cfg.IndexOptions()
			idx = stringset.New(opts...)
		}
		if err != nil {
			return err
		}

		for _, path := range cctx.Args().Slice() {
			stats, err := dictionary.TrainFile(path, idx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cctx.App.Writer, "%s: %s added, %s duplicates, %s skipped in %v\n",
				path, humanize.Comma(int64(stats.Added)), humanize.Comma(int64(stats.Duplicates)),
				humanize.Comma(int64(stats.Skipped)), stats.Duration)
		}

		if err := store.Save(out, idx, level); err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "saved %s keys to %s\n", humanize.Comma(int64(idx.Len())), out)
		return nil
	},
}

var replCmd = &cli.Command{
	Name:  "repl",
	Usage: "look up words interactively",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "results per query (defaults to [cli] default_limit)",
		},
		&cli.BoolFlag{
			Name:  "filter",
			Usage: "skip queries made of digits, symbols or one repeated character",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "write keys added with +word back to the model on exit",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		idx, err := openModel(cfg, true)
		if err != nil {
			return err
		}

		limit := cfg.CLI.DefaultLimit
		if cctx.IsSet("limit") {
			limit = cctx.Int("limit")
		}
		filter := cfg.CLI.FilterInput
		if cctx.IsSet("filter") {
			filter = cctx.Bool("filter")
		}
		log.Debug("Input info:", "limit", limit, "filter", filter, "entries", idx.Len())

		before := idx.Len()
		h := inputcli.NewInputHandler(idx, limit)
		h.SetFilter(filter)
		h.SetOutput(cctx.App.Writer)
		if err := h.Start(os.Stdin); err != nil {
			return fmt.Errorf("repl: %w", err)
		}

		if cctx.Bool("save") && idx.Len() != before {
			return store.Save(cfg.Model.Path, idx, cfg.Model.CompressionLevel)
		}
		return nil
	},
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "answer msgpack lookup requests on stdin/stdout",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "expose prometheus metrics on this address (overrides [server] metrics_addr)",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "write keys added over IPC back to the model when the stream ends",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if cctx.IsSet("metrics-addr") {
			cfg.Server.MetricsAddr = cctx.String("metrics-addr")
		}
		idx, err := openModel(cfg, true)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cctx.Context)
		defer cancel()

		// The IPC loop only stops at EOF, so the listener is bound up front.
		var metricsListener net.Listener
		if addr := cfg.Server.MetricsAddr; addr != "" {
			if metricsListener, err = metrics.Listen(ctx, addr); err != nil {
				return err
			}
		}

		before := idx.Len()
		srv := server.NewServer(idx, cfg.Server)
		showStartupInfo(cfg, idx)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer cancel()
			return srv.Serve(os.Stdin, os.Stdout)
		})
		if metricsListener != nil {
			g.Go(func() error {
				if err := metrics.Serve(ctx, metricsListener); err != nil {
					log.Errorf("Metrics server stopped: %v", err)
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("server: %w", err)
		}

		if cctx.Bool("save") && idx.Len() != before {
			return store.Save(cfg.Model.Path, idx, cfg.Model.CompressionLevel)
		}
		return nil
	},
}

var dumpCmd = &cli.Command{
	Name:  "dump",
	Usage: "print the cluster tree of a model",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "keys",
			Usage: "list the keys of every leaf",
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "write the uncompressed encoded tree instead",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		idx, err := openModel(cfg, false)
		if err != nil {
			return err
		}
		if cctx.Bool("raw") {
			return stringset.Encode(cctx.App.Writer, idx)
		}
		return idx.Dump(cctx.App.Writer, cctx.Bool("keys"))
	},
}

// showStartupInfo logs some basic info about the loaded model to stderr.
func showStartupInfo(cfg *config.Config, idx *stringset.Index) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	st := idx.Stats()
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("model: ( %s )", cfg.Model.Path)
	log.Infof("entries: %s in %d lengths, %s clusters", humanize.Comma(int64(st.Entries)), st.Lengths, humanize.Comma(int64(st.Clusters)))
	log.Info("status: ready")
}
