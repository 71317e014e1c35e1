package authdriver

import (
	"context"

	"github.com/chromedp/chromedp"
)

// selectors maps each DOM marker name to the CSS selector the gatherer
// probes for presence. Centralized here so classifier.go and the
// handlers that click/type against these same elements never drift.
var selectors = map[string]string{
	DOMPauseButton:       `[data-action="pause-membership"]`,
	DOMResumeButton:      `[data-action="resume-membership"]`,
	DOMManageButton:      `[data-action="manage-membership"]`,
	DOMPausedBadge:       `.membership-status--paused`,
	DOMCaptchaImage:      `img#captcha-img`,
	DOMRecaptchaFrame:    `iframe[src*="recaptcha"]`,
	DOMPasskeyPrompt:     `[data-testid="passkey-enroll-prompt"]`,
	DOMEmailField:        `input[type="email"]`,
	DOMEmailPrefilled:    `input[type="email"][value]`,
	DOMPasswordField:     `input[type="password"]`,
	DOMTOTPField:         `input[name="totpPin"]`,
	DOMRecoveryOption:    `[data-challengetype="recovery-email"]`,
	DOMUpdatePaymentCTA:  `[data-action="update-payment-method"]`,
	DOMAccountTile:       `.account-chooser-tile`,
	DOMUseAnotherAccount: `[data-identifier="use-another-account"]`,
}

// GatherSignals probes the current page for the classifier: location,
// presence of each known DOM marker, and the visible body text. Every
// probe runs inside one chromedp.Run call so the snapshot is internally
// consistent.
func GatherSignals(ctx context.Context) (Signals, error) {
	var url, bodyText string
	counts := make(map[string]*int, len(selectors))

	actions := []chromedp.Action{
		chromedp.Location(&url),
		chromedp.Text("body", &bodyText, chromedp.NodeVisible, chromedp.ByQuery),
	}
	for name, sel := range selectors {
		n := new(int)
		counts[name] = n
		actions = append(actions, chromedp.EvaluateAsDevTools(
			`document.querySelectorAll('`+sel+`').length`, n))
	}

	if err := chromedp.Run(ctx, actions...); err != nil {
		return Signals{}, err
	}

	dom := make(map[string]bool, len(counts))
	for name, n := range counts {
		dom[name] = *n > 0
	}
	return Signals{URL: url, DOM: dom, BodyText: bodyText}, nil
}
