// uplake encodes synthetic sensor batches into columnar files and
// uploads them to an S3-compatible object store over presigned URLs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtxerr/uplake/internal/config"
	"github.com/xtxerr/uplake/internal/constants"
	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/logging"
	"github.com/xtxerr/uplake/internal/orchestrator"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	cfgPath := flag.String("config", "uplake.yaml", "config file path")
	bucket := flag.String("bucket", "", "target bucket (overrides config)")
	region := flag.String("region", "", "signing region (overrides config)")
	endpoint := flag.String("endpoint", "", "store endpoint host[:port] (overrides config)")
	prefix := flag.String("prefix", "", "object key prefix (overrides config)")
	batches := flag.Int("batches", 0, "number of batches (overrides config)")
	rows := flag.Int("rows", 0, "rows per batch (overrides config)")
	chunkSize := flag.Int("chunk-size", 0, "upload chunk size in bytes (overrides config)")
	compression := flag.String("compression", "", "codec: snappy, zstd, lz4, gzip, none")
	pipelined := flag.Bool("pipelined", false, "overlap encoding with uploads")
	dryRun := flag.Bool("dry-run", false, "encode and sign but skip uploads")
	verify := flag.Bool("verify", false, "decode each encoded batch and compare before upload")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "log in JSON format")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("uplake %s\n", Version)
		return apperrors.ExitOK
	}

	log.SetFlags(log.Ldate | log.Ltime)

	// Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if apperrors.Is(err, os.ErrNotExist) {
			log.Printf("No config file at %s, using defaults", *cfgPath)
			cfg = config.Default()
			cfg.ApplyEnv()
		} else {
			log.Printf("Load config: %v", err)
			return apperrors.ExitConfig
		}
	}

	// CLI overrides
	if *bucket != "" {
		cfg.Store.Bucket = *bucket
	}
	if *region != "" {
		cfg.Store.Region = *region
	}
	if *endpoint != "" {
		cfg.Store.Endpoint = *endpoint
		cfg.Store.PathStyle = true
	}
	if *prefix != "" {
		cfg.Store.Prefix = *prefix
	}
	if *batches > 0 {
		cfg.Run.Batches = *batches
	}
	if *rows > 0 {
		cfg.Run.RowsPerBatch = *rows
	}
	if *chunkSize > 0 {
		cfg.Upload.ChunkSize = *chunkSize
	}
	if *compression != "" {
		cfg.Encoder.Compression = *compression
	}
	if *pipelined {
		cfg.Run.Mode = constants.RunModePipelined
	}
	if *dryRun {
		cfg.Run.DryRun = true
	}
	if *verify {
		cfg.Run.Verify = true
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logJSON {
		cfg.Logging.JSON = true
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return apperrors.ExitConfig
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Printf("Invalid log level: %v", err)
		return apperrors.ExitConfig
	}
	logging.Init(level, cfg.Logging.JSON)

	logging.Info("uplake starting",
		"version", Version,
		"destination", cfg.StoreURL(),
		"batches", cfg.Run.Batches,
		"rows_per_batch", cfg.Run.RowsPerBatch,
		"mode", cfg.Run.Mode)

	// SIGINT/SIGTERM cancel the run context; the uploader stops at the
	// next chunk boundary and the summary covers what completed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := orchestrator.New(cfg).Run(ctx)
	if summary == nil {
		logging.Error("run aborted", "error", err)
		return apperrors.ErrorToExitCode(err)
	}
	if err != nil {
		logging.Warn("run interrupted", "error", err)
	}

	for _, res := range summary.Results {
		if res.State == orchestrator.BatchStateFailed {
			logging.Error("batch not uploaded", "key", res.Key, "error", res.Err)
		}
	}

	if summary.Failed > 0 {
		return apperrors.ExitFailure
	}
	if err != nil {
		return apperrors.ErrorToExitCode(err)
	}
	return apperrors.ExitOK
}
