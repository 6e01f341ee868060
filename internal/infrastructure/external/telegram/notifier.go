package telegram

import (
	"context"
	"fmt"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

var severityEmoji = map[entities.AlertSeverity]string{
	entities.SeverityWarning:  "⚠️",
	entities.SeverityCritical: "🚨",
}

// Notifier adapts Client to sensors.AlertNotifier, formatting each
// SystemAlert as a Markdown message the way the reference pipeline's
// telegram alert handler does.
type Notifier struct {
	client *Client
}

// NewNotifier wraps a Telegram client as an alert notifier.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// SendAlert implements sensors.AlertNotifier.
func (n *Notifier) SendAlert(ctx context.Context, alert *entities.SystemAlert) error {
	emoji, ok := severityEmoji[alert.Severity]
	if !ok {
		emoji = "📢"
	}
	text := fmt.Sprintf(
		"%s *SYSTEM ALERT*\n\n*Severity:* %s\n*Kind:* %s\n\n%s",
		emoji, alert.Severity, alert.Kind, alert.Message,
	)
	return n.client.SendMessage(ctx, text)
}
