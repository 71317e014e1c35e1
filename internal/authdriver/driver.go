package authdriver

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/averyhale/ytprem-scheduler/internal/browsersession"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
	"github.com/averyhale/ytprem-scheduler/internal/metrics"
)

const (
	canonicalSignInURL = "https://accounts.google.com/ServiceLogin"
	stepBudget         = 10
	wallClockBudget    = 180 * time.Second
)

// Credentials is the read-only-to-the-core set of secrets needed to
// drive one login attempt. Never cached beyond the attempt (spec §3
// Ownership).
type Credentials struct {
	Email         string
	Password      string
	RecoveryEmail string
	TOTPSecret    string
}

// Driver drives a fresh session to logged_in or a typed failure.
type Driver struct {
	sess  *browsersession.Session
	creds Credentials
	now   func() time.Time

	browserErrorReloads int
	signInNavAttempts   int
}

func New(sess *browsersession.Session, creds Credentials) *Driver {
	return &Driver{sess: sess, creds: creds, now: time.Now}
}

// Dispatch loops classify -> handler -> advance, bounded by a 10-step
// counter and a 180s wall-clock ceiling (spec §4.7). It returns
// PageLoggedIn/PageLoggedInPremium on success, or the classified
// failure otherwise.
func (d *Driver) Dispatch(ctx context.Context) (PageType, HandlerResult) {
	start := d.now()
	deadline := start.Add(wallClockBudget)
	defer func() { metrics.AuthAttemptDuration.Observe(d.now().Sub(start).Seconds()) }()

	for step := 0; step < stepBudget; step++ {
		if d.now().After(deadline) {
			return PageUnknown, retriable(domain.ReasonAuthTimeout)
		}
		select {
		case <-ctx.Done():
			return PageUnknown, retriable(domain.ReasonAuthTimeout)
		default:
		}

		signals, err := GatherSignals(d.sess.Context())
		if err != nil {
			return PageUnknown, retriable(domain.ReasonSessionLost)
		}

		page := Classify(signals)
		if page == PageLoggedIn || page == PageLoggedInPremium {
			return page, advanced()
		}

		result := d.handle(d.sess.Context(), page, signals)
		if result.Done() {
			return page, result
		}
	}
	return PageUnknown, retriable(domain.ReasonAuthTimeout)
}

func (d *Driver) handle(ctx context.Context, page PageType, signals Signals) HandlerResult {
	switch page {
	case PageAccountChooser:
		return d.handleAccountChooser(ctx, signals)
	case PageEmailInput:
		return d.handleEmailInput(ctx, signals)
	case PagePasswordInput:
		return d.handlePasswordInput(ctx)
	case PageTwoFactor:
		return d.handleTwoFactor(ctx)
	case PageRecoverySelection:
		return d.handleRecoverySelection(ctx, signals)
	case PageImageCaptcha, PageRecaptcha:
		metrics.CaptchaEncountersTotal.Inc()
		return retriable(domain.ReasonCaptcha)
	case PagePhoneVerification:
		return terminal(domain.ReasonPhoneVerification)
	case PageAccountDisabled:
		return terminal(domain.ReasonAccountDisabled)
	case PagePasskeyEnrollment:
		return d.handlePasskeyEnrollment(ctx, signals)
	case PageBrowserError, PageProviderError:
		return d.handleBrowserError(ctx, signals)
	case PageIdentityConfirm:
		// No specific handler is named in spec §4.7; treat as a
		// transient state the Google-side flow will resolve after a
		// reload, bounded by the same step budget as browser_error.
		return d.handleBrowserError(ctx, signals)
	case PageProfileHome:
		// Reached myaccount.google.com without hitting the membership
		// surface yet; not a failure, advance and let Dispatch re-classify.
		return HandlerResult{}
	default:
		return HandlerResult{}
	}
}

func (d *Driver) handleAccountChooser(ctx context.Context, s Signals) HandlerResult {
	if s.hasAny(DOMUseAnotherAccount) {
		if err := HumanClick(ctx, selectors[DOMUseAnotherAccount]); err != nil {
			return retriable(domain.ReasonSessionLost)
		}
		return HandlerResult{}
	}
	if s.hasAny(DOMAccountTile) {
		if err := HumanClick(ctx, selectors[DOMAccountTile]); err != nil {
			return retriable(domain.ReasonSessionLost)
		}
		return HandlerResult{}
	}
	return retriable(domain.ReasonBrowserError)
}

func (d *Driver) handleEmailInput(ctx context.Context, s Signals) HandlerResult {
	if !s.hasAny(DOMEmailPrefilled) {
		if err := HumanType(ctx, selectors[DOMEmailField], d.creds.Email); err != nil {
			return retriable(domain.ReasonSessionLost)
		}
	}
	if err := clickNext(ctx); err != nil {
		return retriable(domain.ReasonSessionLost)
	}
	return HandlerResult{}
}

func (d *Driver) handlePasswordInput(ctx context.Context) HandlerResult {
	if err := HumanType(ctx, selectors[DOMPasswordField], d.creds.Password); err != nil {
		return retriable(domain.ReasonSessionLost)
	}
	if err := clickNext(ctx); err != nil {
		return retriable(domain.ReasonSessionLost)
	}
	return HandlerResult{}
}

func (d *Driver) handleTwoFactor(ctx context.Context) HandlerResult {
	code, err := GenerateTOTP(ctx, d.creds.TOTPSecret, d.now)
	if err != nil {
		return retriable(domain.ReasonSessionLost)
	}
	if err := HumanType(ctx, selectors[DOMTOTPField], code); err != nil {
		return retriable(domain.ReasonSessionLost)
	}
	if err := clickNext(ctx); err != nil {
		return retriable(domain.ReasonSessionLost)
	}
	return HandlerResult{}
}

func (d *Driver) handleRecoverySelection(ctx context.Context, s Signals) HandlerResult {
	if s.hasAny(DOMRecoveryOption) {
		if err := HumanClick(ctx, selectors[DOMRecoveryOption]); err != nil {
			return retriable(domain.ReasonSessionLost)
		}
		return HandlerResult{}
	}
	// No recovery-email option: pick the first non-blocking alternative.
	if err := HumanClick(ctx, `[data-challengetype]:not([data-blocking="true"])`); err != nil {
		return retriable(domain.ReasonSessionLost)
	}
	return HandlerResult{}
}

func (d *Driver) handlePasskeyEnrollment(ctx context.Context, s Signals) HandlerResult {
	if err := HumanClick(ctx, `[data-action="skip-passkey"]`); err == nil {
		return HandlerResult{}
	}
	// Skip affordance missing — likely a black screen or SSL error.
	// Reload once before giving up.
	if err := chromedp.Run(ctx, chromedp.Reload()); err != nil {
		return retriable(domain.ReasonPasskeyBlackScreen)
	}
	signals, err := GatherSignals(d.sess.Context())
	if err != nil || !signals.hasAny(DOMPasskeyPrompt) {
		return retriable(domain.ReasonPasskeyBlackScreen)
	}
	if err := HumanClick(ctx, `[data-action="skip-passkey"]`); err != nil {
		return retriable(domain.ReasonPasskeyBlackScreen)
	}
	return HandlerResult{}
}

func (d *Driver) handleBrowserError(ctx context.Context, s Signals) HandlerResult {
	if isProxyReconnectTransient(s.BodyText) && d.browserErrorReloads == 0 {
		d.browserErrorReloads++
		if err := chromedp.Run(ctx, chromedp.Reload()); err != nil {
			return retriable(domain.ReasonBrowserError)
		}
		return HandlerResult{}
	}

	if d.browserErrorReloads == 0 {
		d.browserErrorReloads++
		if err := chromedp.Run(ctx, chromedp.Reload()); err == nil {
			return HandlerResult{}
		}
	}

	if d.signInNavAttempts >= 3 {
		return retriable(domain.ReasonBrowserError)
	}
	d.signInNavAttempts++
	if err := chromedp.Run(ctx, chromedp.Navigate(canonicalSignInURL)); err != nil {
		return retriable(domain.ReasonBrowserError)
	}
	time.Sleep(time.Duration(d.signInNavAttempts) * time.Second)
	return HandlerResult{}
}

func isProxyReconnectTransient(bodyText string) bool {
	lower := strings.ToLower(bodyText)
	return strings.Contains(lower, "err_connection_closed") || strings.Contains(lower, "err_network_changed")
}

func clickNext(ctx context.Context) error {
	return HumanClick(ctx, `[data-action="next"], #identifierNext, #passwordNext, #totpNext`)
}
