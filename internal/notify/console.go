package notify

import (
	"context"
	"log/slog"
)

// ConsoleSender logs notifications instead of delivering them, like the
// teacher's email.LogSender. cmd/worker registers it in every Env.
type ConsoleSender struct {
	logger *slog.Logger
}

func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger.With("component", "notify.console")}
}

func (s *ConsoleSender) Notify(_ context.Context, ev Event) error {
	s.logger.Info("notification", "category", ev.Category, "email", ev.Email, "summary", ev.Summary)
	return nil
}

func (s *ConsoleSender) Channel() string { return "console" }
