package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/recgemm/internal/bench"
	"github.com/samcharles93/recgemm/internal/gemm"
	"github.com/samcharles93/recgemm/internal/logger"
)

func rootCmd() *cli.Command {
	var s settings

	flags := append([]cli.Flag{}, benchFlags(&s)...)
	flags = append(flags, tuningFlags(&s)...)
	flags = append(flags, commonFlags(&s)...)

	return &cli.Command{
		Name:      "recgemm",
		Usage:     "Benchmark a recursive, cache-blocked, parallel matrix multiply",
		ArgsUsage: "<dimension>",
		Flags:     flags,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return setup(ctx, cmd, &s)
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBenchmark(ctx, cmd, &s)
		},
		Commands: []*cli.Command{
			versionCmd(),
		},
	}
}

// setup merges the config file into s and installs the logger in ctx.
func setup(ctx context.Context, cmd *cli.Command, s *settings) (context.Context, error) {
	cfg, err := LoadConfig(s.configPath)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	applyConfig(cmd, cfg, s)

	level, err := logger.ParseLevel(s.logLevel)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if s.debug {
		level = slog.LevelDebug
	}
	log, err := logger.ForFormat(cmd.Root().ErrWriter, s.logFormat, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}

func runBenchmark(ctx context.Context, cmd *cli.Command, s *settings) error {
	n, err := parseDimension(cmd.Args().Slice())
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v\nusage: %s [flags] %s", err, cmd.Name, cmd.ArgsUsage), 1)
	}
	ref, err := bench.ReferenceByName(s.reference)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	format := strings.ToLower(s.format)
	if !slices.Contains(outputFormats, format) {
		return cli.Exit(fmt.Sprintf("error: unknown format %q (want one of %s)", s.format, strings.Join(outputFormats, ", ")), 1)
	}

	runner := &bench.Runner{
		Config:    s.engineConfig(n),
		Reference: ref,
	}
	if s.autotune {
		runner.Tuner = gemm.NewAutotuner()
	}
	report, err := runner.Run(ctx, bench.Options{
		Dimension: n,
		Runs:      int(s.runs),
		Warmup:    int(s.warmup),
		Tolerance: s.tolerance,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	out := cmd.Root().Writer
	if format == "json" {
		err = report.WriteJSON(out)
	} else {
		err = report.WriteText(out)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !report.Passed() {
		return cli.Exit(fmt.Sprintf("error: maximum relative error %g exceeds tolerance %g",
			report.MaxRelativeError, report.Tolerance), 1)
	}
	return nil
}

// parseDimension reads the single positional argument as a positive matrix
// dimension.
func parseDimension(args []string) (int, error) {
	switch len(args) {
	case 0:
		return 0, errors.New("missing matrix dimension")
	case 1:
	default:
		return 0, fmt.Errorf("expected one matrix dimension, got %d arguments", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("matrix dimension %q is not an integer", args[0])
	}
	if n <= 0 {
		return 0, fmt.Errorf("matrix dimension must be positive, got %d", n)
	}
	return n, nil
}
