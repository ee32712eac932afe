package trade

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/blake2b"
)

// ErrIdempotencyKeyReused is returned when a key that already placed an order
// comes back with a different cart or customer
var ErrIdempotencyKeyReused = shared.NewClassifiedError(shared.KindValidation, "IDEMPOTENCY_KEY_REUSED",
	"This Idempotency-Key was already used for a different order.")

// replayCleanupTimeout bounds Complete and Release, which outlive the request
const replayCleanupTimeout = 5 * time.Second

// replayKey scopes the client key by its owner: the user when authenticated,
// otherwise the customer email.
func (s *OrderService) replayKey(cmd PlaceOrderCommand) string {
	if s.replays == nil || cmd.IdempotencyKey == "" {
		return ""
	}
	owner := "anon"
	switch {
	case !cmd.Customer.IsAnonymous():
		owner = "user:" + strconv.FormatInt(*cmd.Customer.UserID, 10)
	case cmd.Customer.Email != "":
		owner = "anon:" + digest(normalizeEmail(cmd.Customer.Email))[:32]
	}
	return "order:" + owner + ":" + cmd.IdempotencyKey
}

// requestFingerprint identifies the content of a placement so a replay can be
// checked against the request that created the order
func requestFingerprint(cmd PlaceOrderCommand) string {
	var b strings.Builder
	if cmd.Customer.UserID != nil {
		fmt.Fprintf(&b, "user=%d\n", *cmd.Customer.UserID)
	}
	fmt.Fprintf(&b, "name=%q\nemail=%q\n", strings.TrimSpace(cmd.Customer.Name), normalizeEmail(cmd.Customer.Email))
	for _, line := range cmd.Lines {
		fmt.Fprintf(&b, "line=%d:%d\n", line.ProductID, line.Quantity)
	}
	return digest(b.String())
}

func digest(s string) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// replayRef is the value stored for a completed key: "<order id>:<fingerprint>"
func replayRef(orderID int64, fingerprint string) string {
	return strconv.FormatInt(orderID, 10) + ":" + fingerprint
}

func parseReplayRef(ref string) (int64, string, error) {
	id, fingerprint, ok := strings.Cut(ref, ":")
	if !ok || fingerprint == "" {
		return 0, "", fmt.Errorf("invalid idempotency result %q", ref)
	}
	orderID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid idempotency result %q: %w", ref, err)
	}
	return orderID, fingerprint, nil
}

// cleanupContext keeps request values such as the trace but drops the
// request's cancellation, so a client that went away does not leave its key
// in flight until the TTL expires.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), replayCleanupTimeout)
}
