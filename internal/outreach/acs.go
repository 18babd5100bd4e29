package outreach

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/acsemail"
)

// ACSDelivery adapts an Azure Communication Services client to Delivery,
// marking throttling and server errors as transient.
type ACSDelivery struct {
	client acsemail.Client
}

// NewACSDelivery wraps c.
func NewACSDelivery(c acsemail.Client) *ACSDelivery {
	return &ACSDelivery{client: c}
}

// Send implements Delivery.
func (d *ACSDelivery) Send(ctx context.Context, sender, recipient, subject, body string) (string, error) {
	id, err := d.client.Send(ctx, sender, recipient, subject, body)
	if err == nil {
		return id, nil
	}
	return "", resilience.Classify(err, acsemail.StatusCode(err))
}
