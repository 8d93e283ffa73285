package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/recgemm/internal/bench"
	"github.com/samcharles93/recgemm/internal/gemm"
	"github.com/samcharles93/recgemm/internal/logger"
)

// settings collects every flag destination of the root command. Values from
// the config file are merged in by applyConfig before the action runs.
type settings struct {
	runs      int64
	warmup    int64
	reference string
	tolerance float64
	format    string
	autotune  bool

	tileRows  int64
	tileCols  int64
	tileDepth int64
	threshold int64
	workers   int64

	configPath string
	logLevel   string
	logFormat  string
	debug      bool
}

// engineConfig returns the tuning for an n x n x n problem: the shape-based
// default with every non-zero setting applied on top.
func (s *settings) engineConfig(n int) gemm.Config {
	cfg := gemm.SelectConfig(n, n, n)
	if s.tileRows != 0 {
		cfg.TileRows = int(s.tileRows)
	}
	if s.tileCols != 0 {
		cfg.TileCols = int(s.tileCols)
	}
	if s.tileDepth != 0 {
		cfg.TileDepth = int(s.tileDepth)
	}
	if s.threshold != 0 {
		cfg.Threshold = int(s.threshold)
	}
	cfg.Workers = int(s.workers)
	return cfg
}

var outputFormats = []string{"text", "json"}

func benchFlags(s *settings) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "runs",
			Aliases:     []string{"r"},
			Usage:       "number of timed runs per routine",
			Value:       bench.DefaultRuns,
			Destination: &s.runs,
		},
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of untimed warmup runs",
			Value:       1,
			Destination: &s.warmup,
		},
		&cli.StringFlag{
			Name:        "reference",
			Usage:       "reference routine (" + strings.Join(bench.ReferenceNames, ", ") + ")",
			Value:       "gonum",
			Destination: &s.reference,
		},
		&cli.FloatFlag{
			Name:        "tolerance",
			Usage:       "largest accepted relative error",
			Value:       bench.DefaultTolerance,
			Destination: &s.tolerance,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "report format (" + strings.Join(outputFormats, ", ") + ")",
			Value:       "text",
			Destination: &s.format,
		},
		&cli.BoolFlag{
			Name:        "autotune",
			Usage:       "search tile sizes for the benchmark shape before timing",
			Destination: &s.autotune,
		},
	}
}

func tuningFlags(s *settings) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "tile-rows",
			Usage:       "base kernel tile rows (0 selects by problem shape)",
			Destination: &s.tileRows,
		},
		&cli.Int64Flag{
			Name:        "tile-cols",
			Usage:       "base kernel tile columns (0 selects by problem shape)",
			Destination: &s.tileCols,
		},
		&cli.Int64Flag{
			Name:        "tile-depth",
			Usage:       "base kernel tile depth (0 selects by problem shape)",
			Destination: &s.tileDepth,
		},
		&cli.Int64Flag{
			Name:        "threshold",
			Usage:       "largest output extent handled without splitting (0 selects by problem shape)",
			Destination: &s.threshold,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "parallel workers (0 uses GOMAXPROCS, 1 runs sequentially)",
			Destination: &s.workers,
		},
	}
}

func commonFlags(s *settings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config file (default: $XDG_CONFIG_HOME/recgemm/config.yaml)",
			Destination: &s.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &s.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (" + strings.Join(logger.Formats, ", ") + ")",
			Value:       "pretty",
			Destination: &s.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &s.debug,
		},
	}
}
