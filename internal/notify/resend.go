package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendSender emails a notification summary via the Resend API —
// adapted directly from the teacher's internal/email.ResendSender,
// generalized from magic-link emails to subscription-lifecycle alerts.
type ResendSender struct {
	client *resend.Client
	from   string
	to     string
}

func NewResendSender(apiKey, from, to string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, to: to}
}

func (s *ResendSender) Notify(ctx context.Context, ev Event) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: fmt.Sprintf("ytprem-scheduler: %s", ev.Category),
		Html:    fmt.Sprintf("<p>%s</p><p>account: %s</p>", ev.Summary, ev.Email),
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	return nil
}

func (s *ResendSender) Channel() string { return "email" }
