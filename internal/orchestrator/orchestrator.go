// Package orchestrator drives complete upload runs.
//
// A run encodes N batches of readings into columnar buffers, signs one
// upload authorization per attempt, and transfers each buffer to the
// object store. Batches are isolated: one failure marks that batch
// failed and the run continues. Only precondition failures and
// cancellation abort a run.
//
// Two modes exist. Sequential processes one batch start to finish
// before touching the next. Pipelined overlaps encoding of batch i+1
// with the upload of batch i, bounded by a byte budget on encoded
// buffers in flight.
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	defaults "github.com/xtxerr/uplake/config"
	"github.com/xtxerr/uplake/internal/config"
	"github.com/xtxerr/uplake/internal/constants"
	"github.com/xtxerr/uplake/internal/encoder"
	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/generator"
	"github.com/xtxerr/uplake/internal/logging"
	"github.com/xtxerr/uplake/internal/model"
	"github.com/xtxerr/uplake/internal/precheck"
	"github.com/xtxerr/uplake/internal/signer"
	"github.com/xtxerr/uplake/internal/uploader"
)

var log = logging.Component("orchestrator")

// =============================================================================
// Collaborators
// =============================================================================

// RowSource supplies the readings for one batch. The default source is
// the deterministic generator; tests substitute their own.
type RowSource interface {
	Rows(batch, count int) ([]model.Reading, error)
}

// =============================================================================
// Batch Results
// =============================================================================

// BatchState is the terminal state of one batch within a run.
type BatchState int

const (
	// BatchStatePending is the zero value. Every code path assigns a
	// terminal state; a pending result in a summary is a bug.
	BatchStatePending BatchState = iota

	// BatchStateSucceeded means the store acknowledged the upload.
	BatchStateSucceeded

	// BatchStateFailed means encoding, verification, or the upload
	// failed for this batch.
	BatchStateFailed

	// BatchStateSkipped means the batch was not transferred: dry run,
	// or the run was canceled before or during its turn.
	BatchStateSkipped
)

// String returns the state name.
func (s BatchState) String() string {
	switch s {
	case BatchStateSucceeded:
		return "succeeded"
	case BatchStateFailed:
		return "failed"
	case BatchStateSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// BatchResult records what happened to one batch.
type BatchResult struct {
	// Index is the batch index within the run.
	Index int

	// Key is the object key the batch targeted.
	Key string

	// State is the terminal state.
	State BatchState

	// Rows is the number of readings encoded.
	Rows int

	// Bytes is the encoded buffer length.
	Bytes int64

	// BytesSent is how many payload bytes the final upload attempt
	// pushed before it ended.
	BytesSent int64

	// StatusCode is the store's response status on the final attempt,
	// 0 when no response arrived.
	StatusCode int

	// Elapsed is the wall time spent on this batch across all phases.
	Elapsed time.Duration

	// Attempts is the number of upload attempts made.
	Attempts int

	// Err is the terminal error for failed and canceled batches.
	Err error
}

// =============================================================================
// Run Summary
// =============================================================================

// RunSummary aggregates a completed run. It is returned even when the
// run was canceled partway, with the untouched batches marked skipped.
type RunSummary struct {
	Batches   int
	Succeeded int
	Failed    int
	Skipped   int

	RowsEncoded   int64
	BytesEncoded  int64
	BytesUploaded int64

	Elapsed time.Duration

	// Upload latency quantiles in milliseconds, zero when no upload
	// attempt completed.
	UploadP50Ms float64
	UploadP95Ms float64
	UploadP99Ms float64

	// Results holds one entry per batch, ordered by index.
	Results []BatchResult
}

// FailedKeys returns the object keys of failed batches, in index order.
func (s *RunSummary) FailedKeys() []string {
	var keys []string
	for i := range s.Results {
		if s.Results[i].State == BatchStateFailed {
			keys = append(keys, s.Results[i].Key)
		}
	}
	return keys
}

// AllSucceeded reports whether every batch was uploaded.
func (s *RunSummary) AllSucceeded() bool {
	return s.Succeeded == s.Batches
}

// =============================================================================
// Orchestrator
// =============================================================================

// Orchestrator owns the components of a run and executes runs one at a
// time.
type Orchestrator struct {
	cfg *config.Config

	rows     RowSource
	encoder  *encoder.Encoder
	signer   *signer.Signer
	uploader *uploader.Uploader
	checkers []precheck.Checker
	retry    RetryStrategy

	budget  int64
	running atomic.Bool
	stats   *RunStats
}

// New creates an orchestrator wired from the configuration. Pass nil
// for defaults.
func New(cfg *config.Config) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}

	sgn := signer.New(signer.Config{
		Region:      cfg.Store.Region,
		Endpoint:    cfg.Store.Endpoint,
		PathStyle:   cfg.Store.PathStyle,
		Insecure:    cfg.Store.Insecure,
		Credentials: cfg.Store.Credentials.StaticProvider(),
	})

	probeURL := cfg.Readiness.ProbeURL
	if probeURL == "" {
		probeURL = sgn.ObjectURL(cfg.Store.Bucket, "")
	}

	budget := cfg.Run.EncodedBudgetBytes
	if budget < 1 {
		budget = defaults.DefaultEncodedBudgetBytes
	}

	return &Orchestrator{
		cfg: cfg,
		rows: generator.New(&generator.Config{
			BaseTimestampMs: cfg.Generator.BaseTimestampMs,
			RowSpacingMs:    cfg.Generator.RowSpacingMs,
			BatchSpacingMs:  cfg.Generator.BatchSpacingMs,
		}),
		encoder: encoder.New(encoder.Options{
			Compression:      encoder.ParseCompressionType(cfg.Encoder.Compression),
			CompressionLevel: cfg.Encoder.CompressionLevel,
		}),
		signer: sgn,
		uploader: uploader.New(&uploader.Config{
			ChunkSize:       cfg.Upload.ChunkSize,
			RequestTimeout:  cfg.Upload.RequestTimeout,
			RejectBodyLimit: cfg.Upload.RejectBodyLimit,
		}),
		checkers: []precheck.Checker{
			precheck.NewStoreProbe(probeURL, cfg.Readiness.ProbeTimeout),
			precheck.NewClockCheck(),
		},
		retry:  NoRetry{},
		budget: budget,
	}
}

// SetRowSource replaces the row source. Call before Run.
func (o *Orchestrator) SetRowSource(src RowSource) {
	o.rows = src
}

// SetRetryStrategy replaces the upload retry policy. Call before Run.
func (o *Orchestrator) SetRetryStrategy(rs RetryStrategy) {
	o.retry = rs
}

// SetCheckers replaces the precondition checks. Call before Run.
func (o *Orchestrator) SetCheckers(checkers ...precheck.Checker) {
	o.checkers = checkers
}

// =============================================================================
// Run
// =============================================================================

// Run executes one complete run and returns its summary.
//
// Per-batch failures do not produce an error; they are reported in the
// summary. The error return is reserved for conditions that abort the
// run as a whole: a failed precondition check (nil summary) or
// cancellation (partial summary with the remaining batches skipped).
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrRunInProgress
	}
	defer o.running.Store(false)

	o.stats = NewRunStats()
	start := time.Now()

	log.Info("run starting",
		"batches", o.cfg.Run.Batches,
		"rows_per_batch", o.cfg.Run.RowsPerBatch,
		"mode", o.cfg.Run.Mode,
		"destination", o.cfg.StoreURL(),
		"compression", o.cfg.Encoder.Compression,
		"dry_run", o.cfg.Run.DryRun)

	// Signing is pointless against a store we cannot reach or with a
	// clock the store will not accept. Dry runs touch nothing remote,
	// so they skip the probes.
	if !o.cfg.Run.DryRun {
		if err := precheck.Run(ctx, o.checkers...); err != nil {
			return nil, err
		}
	}

	results := make([]BatchResult, o.cfg.Run.Batches)

	var runErr error
	switch o.cfg.Run.Mode {
	case constants.RunModePipelined:
		runErr = o.runPipelined(ctx, results)
	default:
		runErr = o.runSequential(ctx, results)
	}

	summary := o.summarize(results, time.Since(start))

	log.Info("run complete",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"rows", summary.RowsEncoded,
		"bytes_uploaded", config.FormatBytes(summary.BytesUploaded),
		"elapsed", summary.Elapsed.Round(time.Millisecond).String())

	if keys := summary.FailedKeys(); len(keys) > 0 {
		log.Warn("failed batches", "keys", keys)
	}

	return summary, runErr
}

func (o *Orchestrator) summarize(results []BatchResult, elapsed time.Duration) *RunSummary {
	s := &RunSummary{
		Batches:       len(results),
		RowsEncoded:   o.stats.RowsEncoded.Load(),
		BytesEncoded:  o.stats.BytesEncoded.Load(),
		BytesUploaded: o.stats.BytesUploaded.Load(),
		Elapsed:       elapsed,
		Results:       results,
	}
	for i := range results {
		switch results[i].State {
		case BatchStateSucceeded:
			s.Succeeded++
		case BatchStateFailed:
			s.Failed++
		case BatchStateSkipped:
			s.Skipped++
		}
	}
	if p50, p95, p99, ok := o.stats.UploadQuantiles(); ok {
		s.UploadP50Ms, s.UploadP95Ms, s.UploadP99Ms = p50, p95, p99
	}
	return s
}

// =============================================================================
// Batch Processing
// =============================================================================

// encodeBatch runs the local phases for one batch: row production,
// encoding, optional verification, and the dry-run short circuit. When
// the returned buffer is nil the result is terminal and the batch must
// not be uploaded.
func (o *Orchestrator) encodeBatch(ctx context.Context, index int) (BatchResult, *model.EncodedBatch) {
	key := o.cfg.ObjectKey(index)
	ctx = logging.ContextWithBatch(ctx, index)
	ctx = logging.ContextWithObjectKey(ctx, key)
	blog := logging.WithContext(ctx)

	start := time.Now()
	res := BatchResult{Index: index, Key: key}
	o.stats.BatchesStarted.Add(1)

	rows, err := o.rows.Rows(index, o.cfg.Run.RowsPerBatch)
	if err != nil {
		return o.fail(res, start, apperrors.Wrapf(err, "batch %d: row source", index)), nil
	}

	batch, err := o.encoder.Encode(index, key, rows)
	if err != nil {
		return o.fail(res, start, err), nil
	}
	res.Rows = batch.Rows
	res.Bytes = int64(batch.Len())
	o.stats.RowsEncoded.Add(int64(batch.Rows))
	o.stats.BytesEncoded.Add(res.Bytes)

	if o.cfg.Run.Verify {
		if err := o.verifyBatch(batch, rows); err != nil {
			return o.fail(res, start, err), nil
		}
	}

	// A dry run still signs, so credential problems surface without
	// touching the store.
	if o.cfg.Run.DryRun {
		signed, err := o.signer.PresignPut(ctx, o.cfg.Store.Bucket, key, o.cfg.Upload.URLExpiry)
		if err != nil {
			return o.fail(res, start, err), nil
		}
		res.State = BatchStateSkipped
		res.Elapsed = time.Since(start)
		o.stats.BatchesSkipped.Add(1)
		blog.Info("dry run, upload skipped",
			"rows", res.Rows,
			"bytes", res.Bytes,
			"target", signed.Redacted())
		return res, nil
	}

	res.Elapsed = time.Since(start)
	return res, batch
}

// uploadEncoded runs the transfer phase and finalizes the result.
func (o *Orchestrator) uploadEncoded(ctx context.Context, res BatchResult, batch *model.EncodedBatch) BatchResult {
	ctx = logging.ContextWithBatch(ctx, res.Index)
	ctx = logging.ContextWithObjectKey(ctx, res.Key)
	blog := logging.WithContext(ctx)

	start := time.Now()

	outcome, attempts, err := o.uploadWithRetry(ctx, batch)
	res.Attempts = attempts
	if outcome != nil {
		res.BytesSent = outcome.BytesSent
		res.StatusCode = outcome.StatusCode
	}

	if err != nil {
		// A canceled transfer is not a store rejection. The batch is
		// reported skipped so failure counts keep meaning "the store
		// or the pipeline said no".
		if apperrors.Is(err, apperrors.ErrRunCanceled) {
			res.State = BatchStateSkipped
			res.Err = err
			res.Elapsed += time.Since(start)
			o.stats.BatchesSkipped.Add(1)
			blog.Warn("upload canceled", "bytes_sent", res.BytesSent)
			return res
		}
		return o.fail(res, start, err)
	}

	res.State = BatchStateSucceeded
	res.Elapsed += time.Since(start)
	o.stats.BatchesSucceeded.Add(1)
	o.stats.BytesUploaded.Add(outcome.BytesSent)

	blog.Info("batch uploaded",
		"rows", res.Rows,
		"bytes", res.Bytes,
		"status", res.StatusCode,
		"attempts", attempts,
		"elapsed", res.Elapsed.Round(time.Millisecond).String())

	return res
}

// processBatch runs one batch start to finish.
func (o *Orchestrator) processBatch(ctx context.Context, index int) BatchResult {
	res, batch := o.encodeBatch(ctx, index)
	if batch == nil {
		return res
	}
	return o.uploadEncoded(ctx, res, batch)
}

func (o *Orchestrator) fail(res BatchResult, start time.Time, err error) BatchResult {
	res.State = BatchStateFailed
	res.Err = err
	res.Elapsed += time.Since(start)
	o.stats.BatchesFailed.Add(1)
	log.Error("batch failed", "batch", res.Index, "key", res.Key, "error", err)
	return res
}

// uploadWithRetry transfers one batch, consulting the retry strategy
// between attempts. Every attempt gets a fresh signature: a rejected
// signature never becomes valid again, and a delayed retry may outlive
// the original expiry window.
func (o *Orchestrator) uploadWithRetry(ctx context.Context, batch *model.EncodedBatch) (*model.UploadOutcome, int, error) {
	var outcome *model.UploadOutcome
	var err error

	attempt := 0
	for {
		attempt++

		var signed *model.SignedRequest
		signed, err = o.signer.PresignPut(ctx, o.cfg.Store.Bucket, batch.Key, o.cfg.Upload.URLExpiry)
		if err != nil {
			return outcome, attempt, err
		}

		outcome, err = o.uploader.UploadBatch(ctx, signed, batch)
		if outcome != nil {
			o.stats.ObserveUpload(outcome.Elapsed)
		}
		if err == nil {
			return outcome, attempt, nil
		}
		if apperrors.Is(err, apperrors.ErrRunCanceled) {
			return outcome, attempt, err
		}

		delay, again := o.retry.Next(attempt, err)
		if !again {
			return outcome, attempt, err
		}

		log.Warn("upload attempt failed, retrying",
			"key", batch.Key,
			"attempt", attempt,
			"delay", delay.String(),
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return outcome, attempt, apperrors.Wrap(apperrors.ErrRunCanceled, "canceled during retry backoff")
		}
	}
}

// verifyBatch decodes the encoded buffer and compares it to the source
// rows. Readings are plain value structs, so equality is exact; float32
// values survive the columnar round trip bit for bit.
func (o *Orchestrator) verifyBatch(batch *model.EncodedBatch, rows []model.Reading) error {
	decoded, err := encoder.Decode(batch.Data)
	if err != nil {
		return apperrors.Wrapf(err, "verify batch %d", batch.Index)
	}
	if len(decoded) != len(rows) {
		return apperrors.Wrapf(apperrors.ErrEncoding,
			"verify batch %d: %d rows in, %d rows out", batch.Index, len(rows), len(decoded))
	}
	for i := range rows {
		if decoded[i] != rows[i] {
			return apperrors.Wrapf(apperrors.ErrEncoding,
				"verify batch %d: row %d does not match its source", batch.Index, i)
		}
	}
	return nil
}

// skipFrom marks every batch from index on as skipped due to
// cancellation.
func (o *Orchestrator) skipFrom(results []BatchResult, from int) {
	for i := from; i < len(results); i++ {
		results[i] = BatchResult{
			Index: i,
			Key:   o.cfg.ObjectKey(i),
			State: BatchStateSkipped,
			Err:   apperrors.ErrRunCanceled,
		}
		o.stats.BatchesSkipped.Add(1)
	}
}

// =============================================================================
// Sequential Mode
// =============================================================================

func (o *Orchestrator) runSequential(ctx context.Context, results []BatchResult) error {
	for i := range results {
		if ctx.Err() != nil {
			o.skipFrom(results, i)
			return apperrors.Wrapf(apperrors.ErrRunCanceled,
				"run canceled after %d of %d batches", i, len(results))
		}
		results[i] = o.processBatch(ctx, i)
	}
	return nil
}

// =============================================================================
// Pipelined Mode
// =============================================================================

// encodedWork is the handoff between the encode and upload stages. The
// encoder gives up ownership of the buffer when it sends; the weight
// is the semaphore charge to release once the upload is done.
type encodedWork struct {
	res    BatchResult
	batch  *model.EncodedBatch
	weight int64
}

// runPipelined overlaps encoding with uploading. Encoded buffers
// waiting for or in upload are charged against the byte budget, so a
// slow store cannot pile up unbounded memory.
//
// Result slots are written by exactly one stage per index: the encode
// stage owns indexes that never reach the channel, the upload stage
// owns the rest.
func (o *Orchestrator) runPipelined(ctx context.Context, results []BatchResult) error {
	work := make(chan encodedWork, 1)
	sem := semaphore.NewWeighted(o.budget)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for i := range results {
			if gctx.Err() != nil {
				o.skipFrom(results, i)
				return apperrors.Wrapf(apperrors.ErrRunCanceled,
					"run canceled after %d of %d batches", i, len(results))
			}

			res, batch := o.encodeBatch(gctx, i)
			if batch == nil {
				results[i] = res
				continue
			}

			// A single buffer larger than the whole budget still has
			// to move, so its charge is clamped to the budget.
			weight := int64(batch.Len())
			if weight > o.budget {
				weight = o.budget
			}
			if weight < 1 {
				weight = 1
			}

			if err := sem.Acquire(gctx, weight); err != nil {
				res.State = BatchStateSkipped
				res.Err = apperrors.ErrRunCanceled
				results[i] = res
				o.stats.BatchesSkipped.Add(1)
				o.skipFrom(results, i+1)
				return apperrors.Wrapf(apperrors.ErrRunCanceled,
					"run canceled after %d of %d batches", i, len(results))
			}

			select {
			case work <- encodedWork{res: res, batch: batch, weight: weight}:
			case <-gctx.Done():
				sem.Release(weight)
				res.State = BatchStateSkipped
				res.Err = apperrors.ErrRunCanceled
				results[i] = res
				o.stats.BatchesSkipped.Add(1)
				o.skipFrom(results, i+1)
				return apperrors.Wrapf(apperrors.ErrRunCanceled,
					"run canceled after %d of %d batches", i, len(results))
			}
		}
		return nil
	})

	g.Go(func() error {
		// Drain everything the encoder handed over, even after
		// cancellation; uploads observe the canceled context and the
		// batches get classified as skipped.
		for w := range work {
			results[w.res.Index] = o.uploadEncoded(gctx, w.res, w.batch)
			sem.Release(w.weight)
		}
		return nil
	})

	return g.Wait()
}
