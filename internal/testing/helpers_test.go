package testing

import (
	"errors"
	"testing"
	"time"
)

func TestHelperCollectsNothingOnSuccess(t *testing.T) {
	h := NewTestHelper(t)
	for i := 0; i < 5; i++ {
		h.Add(1)
		go func() {
			defer h.Done()
		}()
	}
	h.Wait()
}

func TestHelperErrorIgnoresNil(t *testing.T) {
	h := NewTestHelper(t)
	h.Error(nil)
	h.Wait()
}

func TestWithTimeoutCompletes(t *testing.T) {
	if err := WithTimeout(time.Second, func() error { return nil }); err != nil {
		t.Fatalf("WithTimeout: %v", err)
	}

	want := errors.New("boom")
	if err := WithTimeout(time.Second, func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("WithTimeout error = %v, want %v", err, want)
	}
}

func TestWithTimeoutExpires(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	err := WithTimeout(20*time.Millisecond, func() error {
		<-block
		return nil
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
