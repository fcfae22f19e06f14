package delivery

import "testing"

func TestCanTransitionAndApply(t *testing.T) {
	if !CanTransition(BusinessAvailable, BusinessOnHold) {
		t.Fatalf("expected available -> onhold allowed")
	}
	if !CanTransition(BusinessOnHold, BusinessAvailable) {
		t.Fatalf("expected onhold -> available allowed")
	}
	if CanTransition(BusinessCompleted, BusinessAvailable) {
		t.Fatalf("expected completed to be terminal")
	}
	if CanTransition(BusinessAvailable, BusinessCompleted) {
		t.Fatalf("expected available -> completed shortcut not allowed")
	}

	b := &Business{Status: BusinessAvailable}
	if err := ApplyTransition(b, BusinessAwarded); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if b.Status != BusinessAwarded {
		t.Fatalf("expected awarded, got %s", b.Status)
	}

	if err := ApplyTransition(b, BusinessAvailable); err == nil {
		t.Fatalf("expected awarded -> available to fail")
	}
}

func TestBidStatusOpen(t *testing.T) {
	if !BidAccepted.Open() {
		t.Fatalf("accepted bid should be open")
	}
	for _, s := range []BidStatus{BidAwarded, BidRejected, BidCancelled} {
		if s.Open() {
			t.Fatalf("%s bid should not be open", s)
		}
	}
}

func TestGenerateCode(t *testing.T) {
	code := GenerateCode("owner-1")
	if len(code) != codeLength {
		t.Fatalf("expected %d chars, got %d (%s)", codeLength, len(code), code)
	}
	for _, ch := range code {
		ok := (ch >= '0' && ch <= '9') || (ch >= 'A' && ch <= 'F')
		if !ok {
			t.Fatalf("unexpected character %q in code %s", ch, code)
		}
	}
	if GenerateCode("owner-1") == code {
		t.Fatalf("codes for the same owner should differ")
	}
}
