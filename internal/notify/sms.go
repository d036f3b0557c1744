package notify

import (
	"context"

	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

// SMSSender sends SMS messages to the business operator.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// LogSMSSender writes the SMS to the log instead of dispatching it. SMS
// delivery is a placeholder; no provider is wired.
type LogSMSSender struct {
	logger *logging.Logger
}

// NewLogSMSSender creates an SMS sender that only logs.
func NewLogSMSSender(logger *logging.Logger) *LogSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSMSSender{logger: logger}
}

// SendSMS logs the message but doesn't actually send it.
func (s *LogSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("SMS notification would be sent", "to", to, "body", body)
	return nil
}

var _ SMSSender = (*LogSMSSender)(nil)
