package email

import (
	"context"
	"log/slog"
)

// devSender logs messages instead of delivering them.
type devSender struct {
	logger *slog.Logger
}

// NewDevSender returns a Sender that only logs. Used in development and in
// deployments without Postmark credentials.
func NewDevSender(logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &devSender{logger: logger}
}

func (s *devSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "dev email sender: not delivering",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
	)
	return nil
}
