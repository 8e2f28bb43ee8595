package errors

import (
	"fmt"
	"testing"
)

func TestCategoryCheckers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retriable bool
		fatal     bool
		valid     bool
	}{
		{"schema mismatch", ErrSchemaMismatch, false, false, false},
		{"encoding", ErrEncoding, false, false, false},
		{"signing", ErrSigning, false, false, false},
		{"rejected", ErrUploadRejected, true, false, false},
		{"transport", ErrTransport, true, false, false},
		{"not ready", ErrNotReady, false, true, false},
		{"unreachable", ErrUnreachable, false, true, false},
		{"clock skew", ErrClockSkew, false, true, false},
		{"invalid config", ErrInvalidConfig, false, false, true},
		{"missing field", ErrMissingField, false, false, true},
		{"run canceled", ErrRunCanceled, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetriable(tt.err); got != tt.retriable {
				t.Errorf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.retriable)
			}
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
			}
			if got := IsValidation(tt.err); got != tt.valid {
				t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.valid)
			}
		})
	}
}

func TestCategorySurvivesWrapping(t *testing.T) {
	err := Wrapf(ErrTransport, "upload batch %d", 2)
	err = Wrap(err, "run")

	if !Is(err, ErrTransport) {
		t.Error("wrapped error lost sentinel identity")
	}
	if !IsRetriable(err) {
		t.Error("wrapped transport error should stay retriable")
	}
	if IsFatal(err) {
		t.Error("wrapped transport error should not be fatal")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestErrorToExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, ExitOK},
		{"unreachable", Wrap(ErrUnreachable, "probe"), ExitNotReady},
		{"clock skew", ErrClockSkew, ExitNotReady},
		{"invalid config", NewValidation("bucket", "empty"), ExitConfig},
		{"missing field", NewMissingField("store.region"), ExitConfig},
		{"rejected", NewRejected(403, "AccessDenied"), ExitFailure},
		{"transport", ErrTransport, ExitFailure},
		{"canceled", ErrRunCanceled, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorToExitCode(tt.err); got != tt.code {
				t.Errorf("ErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.code)
			}
		})
	}
}

func TestExitCodeName(t *testing.T) {
	if got := ExitCodeName(ExitNotReady); got != "NotReady" {
		t.Errorf("ExitCodeName(3) = %q, want NotReady", got)
	}
	if got := ExitCodeName(42); got != "Exit(42)" {
		t.Errorf("ExitCodeName(42) = %q", got)
	}
}

func TestRejectedError(t *testing.T) {
	err := NewRejected(503, "SlowDown: reduce request rate")

	if !Is(err, ErrUploadRejected) {
		t.Error("RejectedError should match ErrUploadRejected")
	}
	if !IsRetriable(err) {
		t.Error("rejected upload should be retriable")
	}

	var rejected *RejectedError
	if !As(err, &rejected) {
		t.Fatal("As should extract *RejectedError")
	}
	if rejected.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", rejected.StatusCode)
	}
	if rejected.Body != "SlowDown: reduce request rate" {
		t.Errorf("Body = %q", rejected.Body)
	}

	bare := NewRejected(500, "")
	if got := bare.Error(); got != "upload rejected: status 500" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()

	if v.HasErrors() {
		t.Error("fresh collector should have no errors")
	}
	if v.Err() != nil {
		t.Error("Err() on empty collector should be nil")
	}

	v.Add(nil) // ignored
	v.AddField("store.bucket", "cannot be empty")
	v.AddMissing("store.region")
	v.Add(fmt.Errorf("custom: %w", ErrInvalidConfig))

	if len(v.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(v.Errors))
	}
	if !v.HasErrors() {
		t.Error("HasErrors should be true")
	}

	err := v.Err()
	if err == nil {
		t.Fatal("Err() should be non-nil")
	}
	if !IsValidation(err) {
		t.Error("collected errors should report as validation")
	}
	if ErrorToExitCode(err) != ExitConfig {
		t.Error("validation collection should map to ExitConfig")
	}
}

func TestValidationErrorsSingleMessage(t *testing.T) {
	v := NewValidationErrors()
	v.AddMissing("store.bucket")

	want := "store.bucket: missing required field"
	if got := v.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
