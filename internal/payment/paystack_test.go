package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValidHMAC(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"dep_abc"}}`)

	if !VerifySignature(secret, body, sign(secret, body)) {
		t.Fatal("valid signature rejected")
	}
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"dep_abc"}}`)
	sig := sign(secret, body)

	tampered := []byte(`{"event":"charge.success","data":{"reference":"dep_xyz"}}`)
	if VerifySignature(secret, tampered, sig) {
		t.Fatal("tampered body accepted")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	if VerifySignature("right", body, sign("wrong", body)) {
		t.Fatal("signature from wrong secret accepted")
	}
}

func TestVerifySignatureFailsClosedWithoutSecret(t *testing.T) {
	body := []byte(`{}`)
	if VerifySignature("", body, sign("anything", body)) {
		t.Fatal("missing secret must reject all webhooks")
	}
	if VerifySignature("secret", body, "") {
		t.Fatal("missing signature must be rejected")
	}
}

func TestTxStatusTerminal(t *testing.T) {
	cases := map[TxStatus]bool{
		StatusPending:   false,
		StatusSuccess:   true,
		StatusCompleted: true,
		StatusFailed:    true,
	}
	for status, want := range cases {
		if got := status.IsTerminal(); got != want {
			t.Fatalf("%s: IsTerminal=%v, want %v", status, got, want)
		}
	}
}

func TestTransferResultAccepted(t *testing.T) {
	for _, status := range []string{"success", "pending"} {
		if !(&TransferResult{Status: status}).Accepted() {
			t.Fatalf("status %q should be accepted", status)
		}
	}
	if (&TransferResult{Status: "failed"}).Accepted() {
		t.Fatal("failed transfer must not be accepted")
	}
}
