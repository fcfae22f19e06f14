package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/shopspring/decimal"
)

// fakeStore 内存版 store，只实现 PlaceBid 用到的路径。
type fakeStore struct {
	business     *Business
	hasBid       []bool // HasBid 依次返回的结果
	hasBidCalls  int
	createBidErr error
	created      []*Bid
}

func (f *fakeStore) CreateBusiness(ctx context.Context, b *Business) error { return nil }
func (f *fakeStore) GetBusiness(ctx context.Context, id string) (*Business, error) {
	return f.business, nil
}
func (f *fakeStore) SaveBusiness(ctx context.Context, b *Business) error { return nil }
func (f *fakeStore) CreateBid(ctx context.Context, b *Bid) error {
	if f.createBidErr != nil {
		return f.createBidErr
	}
	f.created = append(f.created, b)
	return nil
}
func (f *fakeStore) HasBid(ctx context.Context, businessID, driverID string) (bool, error) {
	out := f.hasBid[f.hasBidCalls]
	f.hasBidCalls++
	return out, nil
}
func (f *fakeStore) ListForDriver(ctx context.Context, driverID string, filter BusinessFilter) ([]Business, error) {
	return nil, nil
}
func (f *fakeStore) ListForOwner(ctx context.Context, ownerID string, filter BusinessFilter) ([]Business, error) {
	return nil, nil
}
func (f *fakeStore) ListBidsByBusiness(ctx context.Context, businessID string) ([]Bid, error) {
	return nil, nil
}
func (f *fakeStore) ListBidsByDriver(ctx context.Context, driverID string, limit int) ([]Bid, error) {
	return nil, nil
}

func newTestService(t *testing.T, st store) *Service {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "error"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewService(nil, st, log)
}

func openBusiness() *Business {
	return &Business{ID: "b1", OwnerID: "owner", Status: BusinessAvailable}
}

func TestPlaceBidRejectsDuplicate(t *testing.T) {
	st := &fakeStore{business: openBusiness(), hasBid: []bool{true}}
	svc := newTestService(t, st)

	_, err := svc.PlaceBid(context.Background(), "drv", "b1", decimal.NewFromInt(100))
	if !apperr.IsKind(err, apperr.KindDuplicateBid) {
		t.Fatalf("expected duplicate bid error, got %v", err)
	}
	if len(st.created) != 0 {
		t.Fatalf("duplicate bid must not be persisted")
	}
}

func TestPlaceBidDuplicateOnUniqueIndexRace(t *testing.T) {
	// 首次检查未命中，但并发写入抢先落库：CreateBid 撞唯一索引，
	// 复查命中后必须报重复出价而不是裸数据库错误
	st := &fakeStore{
		business:     openBusiness(),
		hasBid:       []bool{false, true},
		createBidErr: errors.New("Error 1062: Duplicate entry 'b1-drv' for key 'uk_business_driver'"),
	}
	svc := newTestService(t, st)

	_, err := svc.PlaceBid(context.Background(), "drv", "b1", decimal.NewFromInt(100))
	if !apperr.IsKind(err, apperr.KindDuplicateBid) {
		t.Fatalf("expected duplicate bid error on index race, got %v", err)
	}
}

func TestPlaceBidGuards(t *testing.T) {
	// 自家单不能出价
	st := &fakeStore{business: openBusiness(), hasBid: []bool{false}}
	svc := newTestService(t, st)
	if _, err := svc.PlaceBid(context.Background(), "owner", "b1", decimal.NewFromInt(10)); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for own business, got %v", err)
	}

	// 非 AVAILABLE 状态不接受出价
	awarded := openBusiness()
	awarded.Status = BusinessAwarded
	st = &fakeStore{business: awarded, hasBid: []bool{false}}
	svc = newTestService(t, st)
	if _, err := svc.PlaceBid(context.Background(), "drv", "b1", decimal.NewFromInt(10)); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict for awarded business, got %v", err)
	}

	// 金额必须为正
	st = &fakeStore{business: openBusiness(), hasBid: []bool{false}}
	svc = newTestService(t, st)
	if _, err := svc.PlaceBid(context.Background(), "drv", "b1", decimal.Zero); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestPlaceBidSucceeds(t *testing.T) {
	st := &fakeStore{business: openBusiness(), hasBid: []bool{false}}
	svc := newTestService(t, st)

	bid, err := svc.PlaceBid(context.Background(), "drv", "b1", decimal.NewFromInt(250))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bid.Status != BidAccepted {
		t.Fatalf("new bid should be open, got %s", bid.Status)
	}
	if len(st.created) != 1 {
		t.Fatalf("expected one persisted bid, got %d", len(st.created))
	}
}
