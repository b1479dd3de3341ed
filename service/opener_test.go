package service

import (
	"context"
	"errors"
	"testing"
)

func TestOpenerReturnsText(t *testing.T) {
	svc := NewOpenerService(&fakeGenerator{output: "You promised Sam a follow-up by Friday."})

	opener, ok := svc.GenerateOpener(context.Background(), "Monday sync", "## Next Steps\nFollow up with Sam.")
	if !ok {
		t.Fatal("expected an opener")
	}
	if opener == "" {
		t.Fatal("opener is empty")
	}
}

// TestOpenerSentinelMeansNoOpener: the literal token is an outcome, not text
// to surface.
func TestOpenerSentinelMeansNoOpener(t *testing.T) {
	svc := NewOpenerService(&fakeGenerator{output: OpenerSentinel})

	if opener, ok := svc.GenerateOpener(context.Background(), "t", "## Summary\nNothing much."); ok || opener != "" {
		t.Fatalf("got (%q, %v), want no opener", opener, ok)
	}
}

// TestOpenerSwallowsProviderFailure: this sub-stage never fails the caller.
func TestOpenerSwallowsProviderFailure(t *testing.T) {
	svc := NewOpenerService(&fakeGenerator{err: errors.New("gateway timeout")})

	if opener, ok := svc.GenerateOpener(context.Background(), "t", "## Summary\nx"); ok || opener != "" {
		t.Fatalf("got (%q, %v), want no opener", opener, ok)
	}
}

func TestOpenerEmptyOutputMeansNoOpener(t *testing.T) {
	svc := NewOpenerService(&fakeGenerator{output: "  \n"})

	if _, ok := svc.GenerateOpener(context.Background(), "t", "## Summary\nx"); ok {
		t.Fatal("empty output should mean no opener")
	}
}
