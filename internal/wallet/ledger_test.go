package wallet

import (
	"testing"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
)

func TestDebitActiveInsufficientFunds(t *testing.T) {
	w := &Wallet{ActiveBalance: 100}
	if err := DebitActive(w, 200); !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if w.ActiveBalance != 100 {
		t.Fatalf("failed debit must not mutate balance, got %d", w.ActiveBalance)
	}
}

func TestAmountMustBePositive(t *testing.T) {
	w := &Wallet{ActiveBalance: 100}
	for _, amount := range []int64{0, -50} {
		if err := DebitActive(w, amount); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("amount %d: expected validation error, got %v", amount, err)
		}
		if err := CreditActive(w, amount); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("amount %d: expected validation error, got %v", amount, err)
		}
	}
}

func TestEscrowRoundTripIsNetZero(t *testing.T) {
	from := &Wallet{ActiveBalance: 1000}
	to := &Wallet{ActiveBalance: 300}

	if err := HoldEscrow(from, 400); err != nil {
		t.Fatalf("HoldEscrow: %v", err)
	}
	if from.ActiveBalance != 600 || from.TransactionalBalance != 400 {
		t.Fatalf("after hold: active=%d transactional=%d", from.ActiveBalance, from.TransactionalBalance)
	}

	if err := ReleaseEscrowFunds(from, to, 400); err != nil {
		t.Fatalf("ReleaseEscrowFunds: %v", err)
	}
	// 付款方减 400，收款方加 400，双方托管余额回到转账前
	if from.ActiveBalance != 600 || from.TransactionalBalance != 0 {
		t.Fatalf("after release: from active=%d transactional=%d", from.ActiveBalance, from.TransactionalBalance)
	}
	if to.ActiveBalance != 700 || to.TransactionalBalance != 0 {
		t.Fatalf("after release: to active=%d transactional=%d", to.ActiveBalance, to.TransactionalBalance)
	}
}

func TestHoldEscrowRejectsOverdraft(t *testing.T) {
	from := &Wallet{ActiveBalance: 100}
	if err := HoldEscrow(from, 150); !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if from.ActiveBalance != 100 || from.TransactionalBalance != 0 {
		t.Fatalf("failed hold must not mutate wallet: %+v", from)
	}
}

func TestCanReleaseGuards(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	completed := &EscrowTransfer{Status: TransferCompleted}
	if err := CanRelease(completed, now); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("completed transfer: expected state conflict, got %v", err)
	}

	future := now.Add(24 * time.Hour)
	scheduled := &EscrowTransfer{Status: TransferPending, ScheduledReleaseDate: &future}
	if err := CanRelease(scheduled, now); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("early release: expected state conflict, got %v", err)
	}

	past := now.Add(-time.Hour)
	due := &EscrowTransfer{Status: TransferPending, ScheduledReleaseDate: &past}
	if err := CanRelease(due, now); err != nil {
		t.Fatalf("due transfer should be releasable: %v", err)
	}

	unscheduled := &EscrowTransfer{Status: TransferPending}
	if err := CanRelease(unscheduled, now); err != nil {
		t.Fatalf("unscheduled transfer should be releasable: %v", err)
	}
}

func TestCanActorReleaseRestrictsToParties(t *testing.T) {
	transfer := &EscrowTransfer{FromUserID: "payer", ToUserID: "payee"}

	if err := CanActorRelease(transfer, "payer", false); err != nil {
		t.Fatalf("payer should be allowed: %v", err)
	}
	if err := CanActorRelease(transfer, "payee", false); err != nil {
		t.Fatalf("payee should be allowed: %v", err)
	}
	if err := CanActorRelease(transfer, "admin", true); err != nil {
		t.Fatalf("admin should be allowed: %v", err)
	}
	if err := CanActorRelease(transfer, "stranger", false); !apperr.IsKind(err, apperr.KindPermission) {
		t.Fatalf("third party must be rejected, got %v", err)
	}
}
