package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := InsufficientFunds("active balance too low")
	if KindOf(err) != KindInsufficientFunds {
		t.Fatalf("expected insufficient_funds, got %s", KindOf(err))
	}

	// 包装后仍可识别分类
	wrapped := fmt.Errorf("escrow transfer: %w", err)
	if !IsKind(wrapped, KindInsufficientFunds) {
		t.Fatalf("expected kind to survive wrapping")
	}

	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected unknown kind for plain error")
	}
}

func TestGatewayUnwrap(t *testing.T) {
	cause := errors.New("dial timeout")
	err := Gateway("initiate payment", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected unwrap to reach cause")
	}
	if KindOf(err) != KindGateway {
		t.Fatalf("expected gateway kind, got %s", KindOf(err))
	}
}
