package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sourcekart/sourcekart/internal/config"
	paymentdomain "github.com/sourcekart/sourcekart/internal/payment/domain"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Cfg config.Config
}

// Verifier checks Razorpay checkout signatures. Razorpay signs the string
// "<order_id>|<payment_id>" with the key secret, HMAC-SHA256, hex encoded.
type Verifier struct {
	secret []byte
}

func New(p Params) (paymentdomain.SignatureVerifier, error) {
	secret := strings.TrimSpace(p.Cfg.GatewaySecret)
	if secret == "" {
		return nil, fmt.Errorf("razorpay secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func (v *Verifier) Verify(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error {
	_ = ctx

	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}
