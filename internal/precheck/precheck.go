// Package precheck gates a run on its environmental preconditions.
//
// Signing and uploading are pointless when the store is unreachable or
// the wall clock is unsynchronized: every signature would be rejected.
// The orchestrator runs these checks once before the first batch and
// treats any failure as fatal to the whole run.
package precheck

import (
	"context"
	"net/http"
	"time"

	defaults "github.com/xtxerr/uplake/config"
	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/logging"
)

var log = logging.Component("precheck")

// Checker is one precondition.
type Checker interface {
	// Name identifies the check in logs and error messages.
	Name() string

	// Check returns nil when the precondition holds.
	Check(ctx context.Context) error
}

// Run executes checkers in order and fails on the first violation.
func Run(ctx context.Context, checkers ...Checker) error {
	for _, c := range checkers {
		start := time.Now()
		if err := c.Check(ctx); err != nil {
			return apperrors.Wrapf(err, "precondition %s failed", c.Name())
		}
		log.Debug("precondition ok",
			"check", c.Name(),
			"elapsed_ms", time.Since(start).Milliseconds())
	}
	return nil
}

// =============================================================================
// Store reachability
// =============================================================================

// StoreProbe verifies the object store endpoint answers HTTP at all.
//
// Any status code counts as reachable; authorization is the uploader's
// problem. Only a transport-level failure fails the check.
type StoreProbe struct {
	url    string
	client *http.Client
}

// NewStoreProbe creates a probe against the given URL.
func NewStoreProbe(url string, timeout time.Duration) *StoreProbe {
	if timeout <= 0 {
		timeout = defaults.DefaultProbeTimeout
	}
	return &StoreProbe{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name implements Checker.
func (p *StoreProbe) Name() string {
	return "store-reachability"
}

// Check implements Checker.
func (p *StoreProbe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUnreachable, "build probe request: %v", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUnreachable, "probe %s: %v", p.url, err)
	}
	resp.Body.Close()

	log.Debug("store probe answered", "url", p.url, "status", resp.StatusCode)
	return nil
}

// =============================================================================
// Clock sanity
// =============================================================================

// ClockCheck guards against an unsynchronized wall clock.
//
// A clock that predates the floor cannot have been set by time sync;
// signatures minted with it carry a date the store will refuse.
type ClockCheck struct {
	floor time.Time
	now   func() time.Time
}

// NewClockCheck creates a clock check against the default floor.
func NewClockCheck() *ClockCheck {
	return &ClockCheck{
		floor: time.Unix(defaults.ClockFloorUnix, 0),
		now:   time.Now,
	}
}

// NewClockCheckAt creates a clock check with an explicit floor and
// clock source.
func NewClockCheckAt(floor time.Time, now func() time.Time) *ClockCheck {
	if now == nil {
		now = time.Now
	}
	return &ClockCheck{floor: floor, now: now}
}

// Name implements Checker.
func (c *ClockCheck) Name() string {
	return "clock-sync"
}

// Check implements Checker.
func (c *ClockCheck) Check(ctx context.Context) error {
	now := c.now()
	if now.Before(c.floor) {
		return apperrors.Wrapf(apperrors.ErrClockSkew,
			"wall clock reads %s, before floor %s",
			now.UTC().Format(time.RFC3339), c.floor.UTC().Format(time.RFC3339))
	}
	return nil
}
