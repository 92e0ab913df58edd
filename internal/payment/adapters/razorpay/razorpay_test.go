package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/sourcekart/sourcekart/internal/config"
	paymentdomain "github.com/sourcekart/sourcekart/internal/payment/domain"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "rzp_test_secret"
	verifier, err := New(Params{Cfg: config.Config{GatewaySecret: secret}})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	orderID := "order_N9z1KpX2"
	paymentID := "pay_N9z2QrY3"
	signature := sign(secret, orderID, paymentID)

	if err := verifier.Verify(context.Background(), orderID, paymentID, signature); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	if err := verifier.Verify(context.Background(), orderID, paymentID, sign("wrong", orderID, paymentID)); err == nil {
		t.Fatalf("expected invalid signature error")
	}
}

func TestVerifyRejectsEveryBitFlip(t *testing.T) {
	secret := "rzp_test_secret"
	verifier, err := New(Params{Cfg: config.Config{GatewaySecret: secret}})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	orderID := "order_N9z1KpX2"
	paymentID := "pay_N9z2QrY3"
	signature := sign(secret, orderID, paymentID)

	raw, err := hex.DecodeString(signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			tampered := make([]byte, len(raw))
			copy(tampered, raw)
			tampered[i] ^= 1 << bit
			if err := verifier.Verify(context.Background(), orderID, paymentID, hex.EncodeToString(tampered)); err == nil {
				t.Fatalf("bit flip at byte %d bit %d accepted", i, bit)
			}
		}
	}
}

func TestVerifyRejectsMissingInputs(t *testing.T) {
	verifier, err := New(Params{Cfg: config.Config{GatewaySecret: "s"}})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	cases := [][3]string{
		{"", "pay", "sig"},
		{"order", "", "sig"},
		{"order", "pay", ""},
	}
	for _, c := range cases {
		if err := verifier.Verify(context.Background(), c[0], c[1], c[2]); err != paymentdomain.ErrInvalidSignature {
			t.Fatalf("expected ErrInvalidSignature for %v, got %v", c, err)
		}
	}
}

func TestVerifySignatureBoundToIDs(t *testing.T) {
	secret := "rzp_test_secret"
	verifier, err := New(Params{Cfg: config.Config{GatewaySecret: secret}})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	signature := sign(secret, "order_A", "pay_A")
	if err := verifier.Verify(context.Background(), "order_B", "pay_A", signature); err == nil {
		t.Fatalf("signature accepted for a different order id")
	}
	if err := verifier.Verify(context.Background(), "order_A", "pay_B", signature); err == nil {
		t.Fatalf("signature accepted for a different payment id")
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(Params{Cfg: config.Config{}}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
