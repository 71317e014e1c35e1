package workflow

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

const membershipURL = "https://myaccount.google.com/youtube/paid-memberships"

// MembershipSnapshot is one scrape of the membership page: button
// presence, the "paused" text marker, and the raw billing-date text
// (read from whatever locale the account's UI is rendered in).
type MembershipSnapshot struct {
	HasPauseButton     bool
	HasResumeButton    bool
	HasManageButton    bool
	HasPausedText      bool
	HasUpdatePaymentCTA bool
	BillingDateText    string
	BodyLen            int
}

func (s MembershipSnapshot) hasUpdatePaymentCTA() bool { return s.HasUpdatePaymentCTA }

// hasActionButton reports whether the DOM has surfaced at least one of
// the Pause/Resume/Manage controls — the precondition
// DETECT_CURRENT_STATE waits on before sampling (spec §4.8).
func (s MembershipSnapshot) hasActionButton() bool {
	return s.HasPauseButton || s.HasResumeButton || s.HasManageButton
}

func (s MembershipSnapshot) equal(other MembershipSnapshot) bool {
	return s.HasPauseButton == other.HasPauseButton &&
		s.HasResumeButton == other.HasResumeButton &&
		s.HasManageButton == other.HasManageButton &&
		s.HasPausedText == other.HasPausedText &&
		s.BillingDateText == other.BillingDateText
}

// classify maps a stable snapshot to a DetectedState per spec §4.8:
// active = pause button only, or manage+billing-text+no-paused-text;
// paused = resume button only, or paused-text+resume; anything else is
// uncertain.
func (s MembershipSnapshot) classify() DetectedState {
	switch {
	case s.HasPauseButton && !s.HasResumeButton:
		return DetectedActive
	case s.HasManageButton && s.BillingDateText != "" && !s.HasPausedText:
		return DetectedActive
	case s.HasResumeButton && !s.HasPauseButton:
		return DetectedPaused
	case s.HasPausedText && s.HasResumeButton:
		return DetectedPaused
	default:
		return DetectedUncertain
	}
}

const bodyLengthThreshold = 200

func sampleMembership(ctx context.Context) (MembershipSnapshot, error) {
	var s MembershipSnapshot
	var bodyText string

	if err := chromedp.Run(ctx,
		chromedp.EvaluateAsDevTools(`document.querySelectorAll('[data-action="pause-membership"]').length > 0`, &s.HasPauseButton),
		chromedp.EvaluateAsDevTools(`document.querySelectorAll('[data-action="resume-membership"]').length > 0`, &s.HasResumeButton),
		chromedp.EvaluateAsDevTools(`document.querySelectorAll('[data-action="manage-membership"]').length > 0`, &s.HasManageButton),
		chromedp.EvaluateAsDevTools(`document.querySelectorAll('.membership-status--paused').length > 0`, &s.HasPausedText),
		chromedp.EvaluateAsDevTools(`document.querySelectorAll('[data-action="update-payment-method"]').length > 0`, &s.HasUpdatePaymentCTA),
		chromedp.Text(`[data-field="next-billing-date"]`, &s.BillingDateText, chromedp.AtLeast(0)),
		chromedp.Text("body", &bodyText, chromedp.NodeVisible, chromedp.ByQuery),
	); err != nil {
		return MembershipSnapshot{}, err
	}
	s.BodyLen = len(bodyText)
	return s, nil
}

// waitForActionSurface polls sampleMembership until hasActionButton()
// is true and the body is long enough to be a rendered page, or the
// context is done.
func waitForActionSurface(ctx context.Context) (MembershipSnapshot, error) {
	for {
		snap, err := sampleMembership(ctx)
		if err != nil {
			return MembershipSnapshot{}, err
		}
		if snap.hasActionButton() && snap.BodyLen > bodyLengthThreshold {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return MembershipSnapshot{}, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}
