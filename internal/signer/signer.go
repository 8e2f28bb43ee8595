// Package signer derives single-use, time-limited upload authorizations.
//
// Signing follows the SigV4 presigned URL scheme: the expiry rides in
// the query string as a relative number of seconds, and the signature
// covers the canonical request including host addressing. The output is
// deterministic for a fixed signing time, which is what makes it
// testable; production callers rely on a synchronized wall clock since
// skew beyond the scheme's tolerance gets signatures rejected remotely.
package signer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	defaults "github.com/xtxerr/uplake/config"
	"github.com/xtxerr/uplake/internal/constants"
	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/logging"
	"github.com/xtxerr/uplake/internal/model"
)

var log = logging.Component("signer")

// =============================================================================
// Configuration
// =============================================================================

// Config holds signer configuration.
type Config struct {
	// Region is the object store region used in the credential scope.
	Region string

	// Endpoint overrides the default store endpoint (host[:port]).
	// Empty means the region's standard endpoint.
	Endpoint string

	// PathStyle selects path-style addressing (endpoint/bucket/key)
	// instead of virtual-host addressing (bucket.endpoint/key).
	// S3-compatible stores like MinIO usually need this.
	PathStyle bool

	// Insecure builds http URLs instead of https. Local test stores only.
	Insecure bool

	// Credentials supplies the signing credentials. They are resolved
	// per signing call, so rotating providers work without rebuilding
	// the signer. Static configurations use
	// credentials.NewStaticCredentialsProvider.
	Credentials aws.CredentialsProvider

	// Clock returns the signing time. Nil means time.Now; tests inject
	// a fixed clock to get reproducible signatures.
	Clock func() time.Time
}

// =============================================================================
// Signer
// =============================================================================

// Signer produces presigned upload URLs for objects in one store.
//
// Signer is stateless apart from its configuration and safe for
// concurrent use.
type Signer struct {
	cfg    Config
	signer *v4.Signer
	clock  func() time.Time
}

// New creates a new Signer.
func New(cfg Config) *Signer {
	cfg.Endpoint = strings.TrimPrefix(cfg.Endpoint, "https://")
	cfg.Endpoint = strings.TrimPrefix(cfg.Endpoint, "http://")

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Signer{
		cfg: cfg,
		// The store expects the object path exactly as sent, so the
		// canonical request must use it without a second escaping pass.
		signer: v4.NewSigner(func(o *v4.SignerOptions) {
			o.DisableURIPathEscaping = true
		}),
		clock: clock,
	}
}

// ObjectURL returns the unsigned URL for an object.
func (s *Signer) ObjectURL(bucket, key string) string {
	scheme := "https"
	if s.cfg.Insecure {
		scheme = "http"
	}

	endpoint := s.cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("s3.%s.amazonaws.com", s.cfg.Region)
	}

	u := url.URL{Scheme: scheme}
	if s.cfg.PathStyle {
		u.Host = endpoint
		u.Path = "/" + bucket + "/" + key
	} else {
		u.Host = bucket + "." + endpoint
		u.Path = "/" + key
	}

	return u.String()
}

// Presign derives a single-use authorization for one request.
//
// The returned request is valid from the signing instant until expiry.
// Presign captures "now" from the configured clock exactly once, so two
// calls with identical inputs and a frozen clock produce byte-identical
// URLs.
func (s *Signer) Presign(ctx context.Context, bucket, key, method string, expiry time.Duration) (*model.SignedRequest, error) {
	if bucket == "" {
		return nil, apperrors.NewSigning("bucket must not be empty")
	}
	if key == "" {
		return nil, apperrors.NewSigning("key must not be empty")
	}
	if s.cfg.Region == "" {
		return nil, apperrors.NewSigning("region must not be empty")
	}
	if expiry <= 0 {
		return nil, apperrors.NewSigning(fmt.Sprintf("expiry must be positive, got %s", expiry))
	}
	if expiry > defaults.MaxURLExpiry {
		return nil, apperrors.NewSigning(fmt.Sprintf("expiry %s exceeds maximum %s", expiry, defaults.MaxURLExpiry))
	}
	if s.cfg.Credentials == nil {
		return nil, apperrors.NewSigning("no credentials configured")
	}
	creds, err := s.cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSigning, "retrieve credentials: %v", err)
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, apperrors.NewSigning("credentials incomplete")
	}
	if method == "" {
		method = http.MethodPut
	}

	signingTime := s.clock().UTC()

	req, err := http.NewRequestWithContext(ctx, method, s.ObjectURL(bucket, key), nil)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSigning, "build request: %v", err)
	}

	// The scheme encodes expiry as seconds relative to the signing
	// instant; it must be on the request before signing so the
	// signature covers it.
	q := req.URL.Query()
	q.Set(constants.QueryExpires, strconv.FormatInt(int64(expiry/time.Second), 10))
	req.URL.RawQuery = q.Encode()

	signedURL, signedHeaders, err := s.signer.PresignHTTP(ctx, creds, req,
		constants.UnsignedPayload, constants.ServiceS3, s.cfg.Region, signingTime)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSigning, "presign: %v", err)
	}

	signed := &model.SignedRequest{
		Method:        method,
		URL:           signedURL,
		SignedHeaders: signedHeaders,
		ExpiresAt:     signingTime.Add(expiry),
	}

	log.Debug("request signed",
		"key", key,
		"method", method,
		"expires_at", signed.ExpiresAt.Format(time.RFC3339))

	return signed, nil
}

// PresignPut derives an upload authorization for one object.
func (s *Signer) PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (*model.SignedRequest, error) {
	return s.Presign(ctx, bucket, key, http.MethodPut, expiry)
}
