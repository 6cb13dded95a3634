// Package cli implements the command-line interface for overlap-query.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/eunmann/overlap-db/internal/logctx"
	"github.com/eunmann/overlap-db/pkg/groupexec"
	"github.com/eunmann/overlap-db/pkg/humanfmt"
	"github.com/eunmann/overlap-db/pkg/input"
	"github.com/eunmann/overlap-db/pkg/s3fetch"
)

// Run executes the CLI with the given arguments, writing results to stdout.
func Run(args []string) error {
	return RunWithOutput(args, os.Stdout)
}

// RunWithOutput is Run with an explicit output writer, for testing.
func RunWithOutput(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: overlap-query <command> [options]\ncommands: overlap")
	}

	switch args[0] {
	case "overlap":
		return runOverlap(args[1:], out)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func runOverlap(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("overlap", flag.ContinueOnError)
	groupCol := fs.Int("group-col", 0, "CSV column index of the group key (-1 for ungrouped input)")
	startCol := fs.Int("start-col", 1, "CSV column index of the interval start")
	endCol := fs.Int("end-col", 2, "CSV column index of the interval end")
	workers := fs.Int("workers", 0, "number of aggregation workers (0 = auto)")
	batchSize := fs.Int("batch-size", 0, "rows per worker batch (0 = auto)")
	downloadDir := fs.String("download-dir", "", "directory for s3:// downloads (default: a temp dir)")
	debug := fs.Bool("debug", false, "enable debug logging")
	human := fs.Bool("human", false, "human-friendly log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		return errors.New("at least one input file is required")
	}
	if *startCol < 0 || *endCol < 0 {
		return errors.New("--start-col and --end-col must be non-negative")
	}

	logger := logctx.NewConfiguredLogger(*debug, *human)
	ctx := logctx.WithLogger(context.Background(), logger)

	paths, cleanup, err := localizeInputs(ctx, inputs, *downloadDir)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := groupexec.DefaultConfig()
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}

	cols := input.Columns{GroupCol: *groupCol, StartCol: *startCol, EndCol: *endCol}
	results, err := aggregateFiles(ctx, paths, cols, cfg)
	if err != nil {
		return err
	}

	return writeResults(out, results, *groupCol < 0)
}

// localizeInputs downloads any s3:// inputs and returns local paths for all
// of them, plus a cleanup function for the download directory.
func localizeInputs(ctx context.Context, inputs []string, downloadDir string) ([]string, func(), error) {
	cleanup := func() {}

	var uris []string
	for _, in := range inputs {
		if s3fetch.IsS3URI(in) {
			uris = append(uris, in)
		}
	}
	if len(uris) == 0 {
		return inputs, cleanup, nil
	}

	if downloadDir == "" {
		dir, err := os.MkdirTemp("", "overlap-query-*")
		if err != nil {
			return nil, cleanup, fmt.Errorf("create download dir: %w", err)
		}
		downloadDir = dir
		cleanup = func() { os.RemoveAll(dir) }
	}

	client, err := s3fetch.NewClient(ctx)
	if err != nil {
		return nil, cleanup, err
	}
	downloader := s3fetch.NewDownloader(client, s3fetch.DefaultDownloaderConfig())
	fetched, err := downloader.FetchAll(ctx, uris, downloadDir)
	if err != nil {
		return nil, cleanup, fmt.Errorf("fetch S3 inputs: %w", err)
	}

	// Substitute local paths in input order.
	paths := make([]string, 0, len(inputs))
	next := 0
	for _, in := range inputs {
		if s3fetch.IsS3URI(in) {
			paths = append(paths, fetched[next])
			next++
			continue
		}
		paths = append(paths, in)
	}
	return paths, cleanup, nil
}

// aggregateFiles streams every input file through one aggregation runner.
func aggregateFiles(ctx context.Context, paths []string, cols input.Columns, cfg groupexec.Config) (map[string]int64, error) {
	runner := groupexec.NewRunner(ctx, cfg)

	for _, path := range paths {
		fileCtx := logctx.WithStr(ctx, "input", path)
		rd, err := input.Open(path, cols)
		if err != nil {
			_, _ = runner.Finish()
			return nil, err
		}

		var rows int64
		for {
			row, err := rd.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				rd.Close()
				_, _ = runner.Finish()
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			if err := runner.Add(row); err != nil {
				rd.Close()
				_, _ = runner.Finish()
				return nil, err
			}
			rows++
		}
		rd.Close()

		fileLogger := logctx.FromContext(fileCtx)
		fileLogger.Debug().
			Str("rows", humanfmt.Count(rows)).
			Msg("input file consumed")
	}

	return runner.Finish()
}

// writeResults prints one line per group, sorted by group key. For
// ungrouped input the single result is printed without a key.
func writeResults(out io.Writer, results map[string]int64, ungrouped bool) error {
	if ungrouped {
		// Ungrouped aggregation has at most the "" group; an empty input
		// still reports 0, matching an aggregate over zero rows.
		if _, err := fmt.Fprintf(out, "%d\n", results[""]); err != nil {
			return err
		}
		return nil
	}

	groups := make([]string, 0, len(results))
	for group := range results {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	for _, group := range groups {
		if _, err := fmt.Fprintf(out, "%s\t%d\n", group, results[group]); err != nil {
			return err
		}
	}
	return nil
}
