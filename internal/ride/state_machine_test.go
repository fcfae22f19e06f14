package ride

import (
	"testing"
	"time"
)

func TestCanTransitionAndApply(t *testing.T) {
	if !CanTransition(StatusPending, StatusAccepted) {
		t.Fatalf("expected pending -> accepted allowed")
	}
	if CanTransition(StatusCompleted, StatusInProgress) {
		t.Fatalf("expected completed -> in_progress not allowed")
	}

	r := &Ride{Status: StatusPending}
	now := time.Now()
	if err := ApplyTransition(r, StatusAccepted, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if r.Status != StatusAccepted {
		t.Fatalf("expected status accepted, got %s", r.Status)
	}
	if r.AcceptedAt == nil {
		t.Fatalf("expected accepted timestamp to be set")
	}

	if err := ApplyTransition(r, StatusCompleted, now); err == nil {
		t.Fatalf("expected invalid shortcut transition to fail")
	}
}

func TestCancelReachableFromAllNonTerminalStates(t *testing.T) {
	for _, from := range ActiveStatuses {
		if !CanTransition(from, StatusCancelled) {
			t.Fatalf("expected %s -> cancelled allowed", from)
		}
	}
	if CanTransition(StatusCancelled, StatusAccepted) {
		t.Fatalf("expected cancelled to be terminal")
	}
	if CanTransition(StatusCompleted, StatusCancelled) {
		t.Fatalf("expected completed to be terminal")
	}
}

func TestStartFromCancelledFails(t *testing.T) {
	r := &Ride{Status: StatusCancelled}
	if err := ApplyTransition(r, StatusInProgress, time.Now()); err == nil {
		t.Fatalf("expected start on cancelled ride to fail")
	}
	if r.Status != StatusCancelled {
		t.Fatalf("failed transition must not mutate status, got %s", r.Status)
	}
}

func TestCompleteFromDriverArrived(t *testing.T) {
	r := &Ride{Status: StatusDriverArrived}
	if err := ApplyTransition(r, StatusCompleted, time.Now()); err != nil {
		t.Fatalf("expected driver_arrived -> completed allowed: %v", err)
	}
	if r.CompletedAt == nil {
		t.Fatalf("expected completed timestamp to be set")
	}
}
