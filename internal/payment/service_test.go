package payment

import (
	"context"
	"testing"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
)

func TestApplyDepositSuccessCreditsOnce(t *testing.T) {
	now := time.Now().UTC()
	txn := &Transaction{Reference: "dep_x", Type: TypeDeposit, Status: StatusPending, Amount: 5000}

	credits := 0
	settled, err := applyDepositSuccess(txn, now, func() error {
		credits++
		return nil
	})
	if err != nil || !settled {
		t.Fatalf("first settlement should succeed, settled=%v err=%v", settled, err)
	}
	if txn.Status != StatusSuccess || txn.CompletedAt == nil {
		t.Fatalf("expected SUCCESS with completion time, got %s", txn.Status)
	}
	if credits != 1 {
		t.Fatalf("expected exactly one credit, got %d", credits)
	}

	// 回调重复送达：终态流水不再变更、不再入账
	completedAt := *txn.CompletedAt
	settled, err = applyDepositSuccess(txn, now.Add(time.Minute), func() error {
		credits++
		return nil
	})
	if err != nil || settled {
		t.Fatalf("replay must be a no-op, settled=%v err=%v", settled, err)
	}
	if credits != 1 {
		t.Fatalf("replay double-credited the wallet: credits=%d", credits)
	}
	if txn.Status != StatusSuccess || !txn.CompletedAt.Equal(completedAt) {
		t.Fatalf("replay mutated the terminal transaction")
	}
}

func TestApplyDepositSuccessSkipsFailedAndWithdrawals(t *testing.T) {
	now := time.Now().UTC()

	failed := &Transaction{Reference: "dep_f", Type: TypeDeposit, Status: StatusFailed}
	if settled, err := applyDepositSuccess(failed, now, func() error { t.Fatal("credit called"); return nil }); err != nil || settled {
		t.Fatalf("failed transaction must stay untouched, settled=%v err=%v", settled, err)
	}
	if failed.Status != StatusFailed {
		t.Fatalf("status changed to %s", failed.Status)
	}

	wd := &Transaction{Reference: "wd_x", Type: TypeWithdrawal, Status: StatusPending}
	if _, err := applyDepositSuccess(wd, now, func() error { t.Fatal("credit called"); return nil }); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict for withdrawal reference, got %v", err)
	}
}

// fakeGateway 只实现签名校验，其余方法不被这些用例触达。
type fakeGateway struct {
	sigValid bool
}

func (f *fakeGateway) InitiatePayment(ctx context.Context, email string, amount int64, reference string) (*InitiateResult, error) {
	panic("not used")
}
func (f *fakeGateway) VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error) {
	panic("not used")
}
func (f *fakeGateway) CreateRecipient(ctx context.Context, name, accountNumber, bankCode string) (string, error) {
	panic("not used")
}
func (f *fakeGateway) Transfer(ctx context.Context, recipientCode string, amount int64, reference, reason string) (*TransferResult, error) {
	panic("not used")
}
func (f *fakeGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return f.sigValid
}

func newWebhookService(t *testing.T, gw Gateway) *Service {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "error"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewService(nil, nil, nil, gw, "KES", log)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc := newWebhookService(t, &fakeGateway{sigValid: false})

	body := []byte(`{"event":"charge.success","data":{"reference":"dep_x"}}`)
	err := svc.HandleWebhook(context.Background(), body, "bogus")
	if !apperr.IsKind(err, apperr.KindPermission) {
		t.Fatalf("invalid signature must be rejected before any state change, got %v", err)
	}
}

func TestHandleWebhookValidatesBody(t *testing.T) {
	svc := newWebhookService(t, &fakeGateway{sigValid: true})

	if err := svc.HandleWebhook(context.Background(), []byte("{not json"), "sig"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for malformed body, got %v", err)
	}
	if err := svc.HandleWebhook(context.Background(), []byte(`{"event":"charge.success","data":{}}`), "sig"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing reference, got %v", err)
	}
}

func TestTransactionHistoryValidatesFilter(t *testing.T) {
	svc := newWebhookService(t, &fakeGateway{})

	if _, err := svc.TransactionHistory(context.Background(), "u1", HistoryFilter{Type: "REFUND"}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
	if _, err := svc.TransactionHistory(context.Background(), "  ", HistoryFilter{}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty user, got %v", err)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	svc := newWebhookService(t, &fakeGateway{sigValid: true})

	// 非 charge.success 事件只记录，不触达数据库
	body := []byte(`{"event":"transfer.success","data":{"reference":"wd_x"}}`)
	if err := svc.HandleWebhook(context.Background(), body, "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
