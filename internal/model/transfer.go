package model

import (
	"net/http"
	"net/url"
	"time"
)

// EncodedBatch is a self-contained compressed columnar buffer plus its
// provenance. The producer owns it exclusively until it is handed to
// the uploader, which only reads it. It is dropped after the upload
// attempt completes; no retry cache is kept.
type EncodedBatch struct {
	// Index is the batch index within the run.
	Index int

	// Key is the object key the batch is destined for.
	Key string

	// Data is the complete columnar file image.
	Data []byte

	// Rows is the number of readings encoded.
	Rows int
}

// Len returns the encoded length in bytes.
func (b *EncodedBatch) Len() int {
	return len(b.Data)
}

// SignedRequest is a single-use, time-limited authorization for one
// upload. It is a capability: anyone holding the URL can perform the
// write until expiry, so it must never reach logs unredacted.
type SignedRequest struct {
	// Method is the HTTP method the signature covers.
	Method string

	// URL is the presigned URL including the signature query.
	URL string

	// SignedHeaders are the headers covered by the signature; they must
	// be sent verbatim with the request.
	SignedHeaders http.Header

	// ExpiresAt is the instant the authorization lapses.
	ExpiresAt time.Time
}

// Expired reports whether the authorization has lapsed at the given
// instant.
func (r *SignedRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Redacted returns the URL without its query string, safe for debug
// logging.
func (r *SignedRequest) Redacted() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "<unparseable url>"
	}
	u.RawQuery = ""
	return u.String()
}

// UploadOutcome is the per-batch result record aggregated into the run
// summary.
type UploadOutcome struct {
	// Key is the object key the upload targeted.
	Key string

	// BytesAttempted is the payload length.
	BytesAttempted int64

	// BytesSent is how many payload bytes the transport consumed before
	// the attempt ended.
	BytesSent int64

	// StatusCode is the response status, or 0 when the transport failed
	// before a response arrived.
	StatusCode int

	// Elapsed is the wall time of the attempt.
	Elapsed time.Duration

	// Err is the terminal error, nil on success.
	Err error
}

// Succeeded reports whether the store acknowledged the upload.
func (o *UploadOutcome) Succeeded() bool {
	return o.Err == nil && o.StatusCode >= 200 && o.StatusCode < 300
}
