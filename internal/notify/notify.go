package notify

import (
	"context"
	"log/slog"

	"github.com/myat555/WildfireNowcast/internal/model"
)

// Channel names reported in the fan-out result map.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelChat  = "chat"
)

// Notifier delivers an alert over one or more channels and reports
// per-channel success. The engine treats the result as opaque and never
// retries; retry policy belongs to the implementation.
type Notifier interface {
	Send(ctx context.Context, alert model.Alert) map[string]bool
}

// LogNotifier is the delivery stand-in used when no transport is wired:
// it logs the alert and reports success on the channels the level fans
// out to. CRITICAL goes to every channel, HIGH skips SMS, MEDIUM is
// chat only.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, alert model.Alert) map[string]bool {
	results := make(map[string]bool)
	switch alert.Level {
	case model.AlertCritical:
		results[ChannelEmail] = true
		results[ChannelSMS] = true
		results[ChannelChat] = true
	case model.AlertHigh:
		results[ChannelEmail] = true
		results[ChannelChat] = true
	default:
		results[ChannelChat] = true
	}
	if n.logger != nil {
		n.logger.Info("alert notification",
			"alert_id", alert.ID,
			"level", alert.Level,
			"lat", alert.Latitude,
			"lon", alert.Longitude,
			"message", alert.Message,
		)
	}
	return results
}
