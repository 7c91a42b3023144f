package tonefx

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	sentinel := errors.New("boom")
	wrapped := NewError(KindBackendFailure, sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("errors.Is should see through the wrapper to the sentinel")
	}

	var asErr *Error
	if !errors.As(wrapped, &asErr) {
		t.Fatalf("errors.As should recover the *Error wrapper")
	}
	if asErr.Kind != KindBackendFailure {
		t.Fatalf("Kind = %v, want KindBackendFailure", asErr.Kind)
	}
}

func TestKindString(t *testing.T) {
	if got := KindWrongThread.String(); got != "WrongThread" {
		t.Fatalf("KindWrongThread.String() = %q", got)
	}
}
