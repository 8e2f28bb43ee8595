// Package uploader streams encoded batches to presigned targets.
//
// The transfer window is a client-side pacing choice: the store sees an
// ordinary PUT with a Content-Length, but the transport only ever holds
// one chunk of the payload per read, which bounds peak memory on
// constrained links. Success means exactly one thing, a confirmed 2xx
// from the store; everything else is a failure with diagnostics.
package uploader

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	defaults "github.com/xtxerr/uplake/config"
	"github.com/xtxerr/uplake/internal/constants"
	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/logging"
	"github.com/xtxerr/uplake/internal/model"
)

var log = logging.Component("uploader")

// =============================================================================
// Configuration
// =============================================================================

// Config holds uploader configuration.
type Config struct {
	// ChunkSize is the transfer window in bytes. Any value >= 1 works;
	// the received payload is identical regardless.
	ChunkSize int

	// RequestTimeout bounds one whole upload attempt.
	RequestTimeout time.Duration

	// RejectBodyLimit is the maximum number of response body bytes kept
	// from a rejection for diagnostics.
	RejectBodyLimit int

	// ContentType is sent with every upload.
	ContentType string

	// Client overrides the HTTP client; nil builds one from the
	// timeout. Tests inject instrumented clients here.
	Client *http.Client
}

// DefaultConfig returns default uploader configuration.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:       defaults.DefaultChunkSize,
		RequestTimeout:  defaults.DefaultRequestTimeout,
		RejectBodyLimit: defaults.DefaultRejectBodyLimit,
		ContentType:     constants.ContentTypeParquet,
	}
}

// =============================================================================
// Chunked body
// =============================================================================

// chunkReader serves a payload in bounded windows and counts the bytes
// the transport consumed. Cancellation is honored between chunks, never
// inside one.
type chunkReader struct {
	ctx     context.Context
	payload []byte
	chunk   int
	offset  int
	served  int64
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	if r.offset >= len(r.payload) {
		return 0, io.EOF
	}

	n := len(p)
	if n > r.chunk {
		n = r.chunk
	}
	if rest := len(r.payload) - r.offset; n > rest {
		n = rest
	}

	copy(p, r.payload[r.offset:r.offset+n])
	r.offset += n
	r.served += int64(n)
	return n, nil
}

// =============================================================================
// Uploader
// =============================================================================

// Uploader performs single-object PUT uploads against presigned URLs.
//
// Uploader is safe for concurrent use; attempts share the HTTP client
// and nothing else.
type Uploader struct {
	chunkSize       int
	rejectBodyLimit int
	contentType     string
	client          *http.Client
}

// New creates a new Uploader.
func New(cfg *Config) *Uploader {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	chunkSize := cfg.ChunkSize
	if chunkSize < 1 {
		chunkSize = defaults.DefaultChunkSize
	}

	rejectBodyLimit := cfg.RejectBodyLimit
	if rejectBodyLimit < 0 {
		rejectBodyLimit = defaults.DefaultRejectBodyLimit
	}

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = constants.ContentTypeParquet
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: cfg.RequestTimeout,
			// A presigned PUT is never re-sendable to a different
			// location; surface redirects as rejections instead.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return &Uploader{
		chunkSize:       chunkSize,
		rejectBodyLimit: rejectBodyLimit,
		contentType:     contentType,
		client:          client,
	}
}

// Upload streams payload to the signed target and reports the outcome.
//
// The outcome is always returned, including on failure, so callers can
// aggregate bytes and timing; the error mirrors outcome.Err. There is
// no retry here: a rejected attempt needs a fresh signature anyway, and
// retry policy belongs to the orchestrator.
func (u *Uploader) Upload(ctx context.Context, signed *model.SignedRequest, payload []byte) (*model.UploadOutcome, error) {
	outcome := &model.UploadOutcome{
		BytesAttempted: int64(len(payload)),
	}

	start := time.Now()
	body := &chunkReader{ctx: ctx, payload: payload, chunk: u.chunkSize}

	req, err := http.NewRequestWithContext(ctx, signed.Method, signed.URL, body)
	if err != nil {
		outcome.Elapsed = time.Since(start)
		outcome.Err = apperrors.Wrapf(apperrors.ErrTransport, "build request: %v", err)
		return outcome, outcome.Err
	}

	// The store wants the exact payload length up front; the window
	// size is invisible on the wire.
	req.ContentLength = int64(len(payload))
	if len(payload) == 0 {
		req.Body = http.NoBody
	}

	req.Header.Set("Content-Type", u.contentType)
	for name, values := range signed.SignedHeaders {
		// Host rides on the URL; the header variant is ignored by the
		// transport.
		if strings.EqualFold(name, "host") {
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := u.client.Do(req)
	outcome.BytesSent = body.served
	outcome.Elapsed = time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			outcome.Err = apperrors.Wrapf(apperrors.ErrRunCanceled, "upload aborted: %v", ctx.Err())
		} else {
			outcome.Err = apperrors.Wrapf(apperrors.ErrTransport, "upload: %v", err)
		}
		return outcome, outcome.Err
	}
	defer resp.Body.Close()

	outcome.StatusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		prefix, _ := io.ReadAll(io.LimitReader(resp.Body, int64(u.rejectBodyLimit)))
		outcome.Err = apperrors.NewRejected(resp.StatusCode, string(prefix))
		return outcome, outcome.Err
	}

	// A 2xx with unsent payload bytes means the store acknowledged
	// something it never received; refuse to call that success.
	if body.served != int64(len(payload)) {
		outcome.Err = apperrors.Wrapf(apperrors.ErrTransport,
			"short send: %d of %d bytes", body.served, len(payload))
		return outcome, outcome.Err
	}

	// Drain a little so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	log.Debug("upload accepted",
		"status", resp.StatusCode,
		"bytes", outcome.BytesSent,
		"elapsed_ms", outcome.Elapsed.Milliseconds())

	return outcome, nil
}

// UploadBatch uploads an encoded batch and stamps the outcome with its
// object key.
func (u *Uploader) UploadBatch(ctx context.Context, signed *model.SignedRequest, batch *model.EncodedBatch) (*model.UploadOutcome, error) {
	outcome, err := u.Upload(ctx, signed, batch.Data)
	outcome.Key = batch.Key
	return outcome, err
}
