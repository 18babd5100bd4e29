package outreach

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Delivery is an email delivery service. Send returns the service's
// acceptance identifier.
type Delivery interface {
	Send(ctx context.Context, sender, recipient, subject, body string) (string, error)
}

// Sender delivers generated emails from a fixed sender address.
type Sender struct {
	delivery Delivery
	from     string
	retry    resilience.RetryConfig
}

// NewSender creates a Sender.
func NewSender(d Delivery, from string, cfg resilience.RetryConfig) *Sender {
	return &Sender{delivery: d, from: from, retry: cfg}
}

// Send delivers one email. It returns true only when the delivery service
// accepted the message. A blank recipient returns false without contacting
// the service. Errors are logged, never returned.
func (s *Sender) Send(ctx context.Context, recipient, subject, content string) bool {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		zap.L().Warn("outreach: no recipient provided")
		return false
	}

	log := zap.L().With(zap.String("recipient", recipient))
	id, err := resilience.DoVal(ctx, s.retry.WithLogger("email", "send"), func(ctx context.Context) (string, error) {
		return s.delivery.Send(ctx, s.from, recipient, subject, content)
	})
	if err != nil {
		log.Error("outreach: send failed", zap.Error(err))
		return false
	}

	log.Info("outreach: email accepted", zap.String("message_id", id))
	return true
}
