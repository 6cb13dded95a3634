package s3fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/eunmann/overlap-db/internal/logctx"
	"github.com/eunmann/overlap-db/pkg/humanfmt"
)

// DownloaderConfig configures the S3 download manager.
type DownloaderConfig struct {
	// Concurrency is the number of concurrent download parts per object.
	// Default: NumCPU clamped to [4, 16].
	Concurrency int

	// PartSize is the size of each download part in bytes. Default: 16MB.
	PartSize int64

	// FileConcurrency is the number of objects downloaded in parallel by
	// FetchAll. Default: 4.
	FileConcurrency int
}

// DefaultDownloaderConfig returns sensible defaults based on the current machine.
func DefaultDownloaderConfig() DownloaderConfig {
	concurrency := runtime.NumCPU()
	if concurrency < 4 {
		concurrency = 4
	}
	if concurrency > 16 {
		concurrency = 16
	}

	return DownloaderConfig{
		Concurrency:     concurrency,
		PartSize:        16 * 1024 * 1024, // 16MB
		FileConcurrency: 4,
	}
}

// Downloader wraps the AWS S3 download manager for parallel range downloads.
type Downloader struct {
	manager *manager.Downloader
	config  DownloaderConfig
}

// NewDownloader creates a Downloader from an existing client.
func NewDownloader(client *Client, cfg DownloaderConfig) *Downloader {
	def := DefaultDownloaderConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.PartSize <= 0 {
		cfg.PartSize = def.PartSize
	}
	if cfg.FileConcurrency <= 0 {
		cfg.FileConcurrency = def.FileConcurrency
	}

	mgr := manager.NewDownloader(client.s3Client, func(d *manager.Downloader) {
		d.Concurrency = cfg.Concurrency
		d.PartSize = cfg.PartSize
		d.BufferProvider = manager.NewPooledBufferedWriterReadFromProvider(int(cfg.PartSize))
	})

	return &Downloader{
		manager: mgr,
		config:  cfg,
	}
}

// DownloadToFile downloads one S3 object to the given local path.
// The destination is removed on failure.
func (d *Downloader) DownloadToFile(ctx context.Context, bucket, key, destPath string) (int64, error) {
	file, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("create destination file: %w", err)
	}
	defer file.Close()

	n, err := d.manager.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		os.Remove(destPath)
		return 0, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return n, nil
}

// FetchAll downloads every s3:// URI into destDir and returns the local
// paths in input order. Objects are fetched concurrently.
func (d *Downloader) FetchAll(ctx context.Context, uris []string, destDir string) ([]string, error) {
	// Validate all URIs up front so a bad one fails before any download.
	type target struct {
		bucket, key, local string
	}
	targets := make([]target, len(uris))
	for i, uri := range uris {
		bucket, key, err := ParseS3URI(uri)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", uri, err)
		}
		targets[i] = target{
			bucket: bucket,
			key:    key,
			local:  filepath.Join(destDir, fmt.Sprintf("%03d-%s", i, filepath.Base(key))),
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.FileConcurrency)

	started := time.Now()
	paths := make([]string, len(targets))
	for i, tgt := range targets {
		g.Go(func() error {
			n, err := d.DownloadToFile(gctx, tgt.bucket, tgt.key, tgt.local)
			if err != nil {
				return err
			}
			logger := logctx.FromContext(gctx)
			logger.Debug().
				Str("key", tgt.key).
				Str("bytes", humanfmt.Bytes(n)).
				Msg("downloaded input file")
			paths[i] = tgt.local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger := logctx.FromContext(ctx)
	logger.Info().
		Int("files", len(paths)).
		Str("elapsed", humanfmt.Duration(time.Since(started))).
		Msg("fetched S3 inputs")

	return paths, nil
}
