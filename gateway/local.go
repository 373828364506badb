package gateway

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Local stands in for the real gateway when no key pair is configured.
// Signatures use the same scheme, so clients can complete the flow by
// computing Signature with the local secret.
type Local struct {
	secret string
}

func NewLocal(secret string) *Local {
	return &Local{secret: secret}
}

func (l *Local) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	id := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	slog.InfoContext(ctx, "local gateway order created", "gateway_order_id", id, "amount", amountMinor, "currency", currency, "receipt", receipt)
	return id, nil
}

func (l *Local) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return verify(l.secret, gatewayOrderID, paymentID, signature)
}
