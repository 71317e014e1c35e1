package authdriver

import "strings"

// Signals is everything the classifier needs: current URL, a small set
// of boolean DOM markers the caller has already queried for, and the
// raw body text. Kept as plain data so classification itself is a pure,
// table-testable function — the chromedp-driving code that fills this
// in lives in gather.go.
type Signals struct {
	URL      string
	DOM      map[string]bool
	BodyText string
}

func (s Signals) hasAny(markers ...string) bool {
	for _, m := range markers {
		if s.DOM[m] {
			return true
		}
	}
	return false
}

func (s Signals) textContainsAny(needles ...string) bool {
	lower := strings.ToLower(s.BodyText)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// DOM marker names. These are logical names for selector-presence
// checks the classifier gatherer performs via chromedp; kept as
// constants so classifier.go and the gatherer agree on vocabulary.
const (
	DOMPauseButton     = "pause_button"
	DOMResumeButton    = "resume_button"
	DOMManageButton    = "manage_button"
	DOMPausedBadge     = "paused_badge"
	DOMCaptchaImage    = "captcha_image"
	DOMRecaptchaFrame  = "recaptcha_frame"
	DOMPasskeyPrompt   = "passkey_prompt"
	DOMEmailField      = "email_field"
	DOMEmailPrefilled  = "email_prefilled"
	DOMPasswordField   = "password_field"
	DOMTOTPField       = "totp_field"
	DOMRecoveryOption  = "recovery_option"
	DOMUpdatePaymentCTA = "update_payment_cta"
	DOMAccountTile     = "account_tile"
	DOMUseAnotherAccount = "use_another_account"
)
