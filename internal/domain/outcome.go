package domain

import "time"

// FailureReason is the closed error taxonomy from the core's error handling
// design. Every component that can fail tags its failure with exactly one
// of these; the outer loop switches on Class(), never on the string value.
type FailureReason string

const (
	ReasonTransportTransient       FailureReason = "transport_transient"
	ReasonAuthTimeout              FailureReason = "auth_timeout"
	ReasonCaptcha                  FailureReason = "captcha"
	ReasonSessionLost              FailureReason = "session_lost"
	ReasonBrowserError             FailureReason = "browser_error"
	ReasonStateUncertain           FailureReason = "state_uncertain"
	ReasonPaymentRecoveredRecheck  FailureReason = "payment_recovered_needs_recheck"
	ReasonPaymentPending           FailureReason = "payment_pending"
	ReasonAccountDisabled          FailureReason = "account_disabled"
	ReasonPhoneVerification        FailureReason = "phone_verification"
	ReasonPaymentMethodIssue       FailureReason = "payment_method_issue"
	ReasonPaymentDelayExceeded     FailureReason = "payment_delay_exceeded"
	ReasonPasskeyBlackScreen       FailureReason = "passkey_black_screen"
)

// Class is the outer-action bucket a FailureReason belongs to (spec §7).
type Class string

const (
	ClassTransient      Class = "transient"
	ClassRetriable      Class = "retriable"
	ClassScheduledRetry Class = "scheduled-retry"
	ClassTerminal       Class = "terminal"
)

// Class returns the outer-loop action bucket for a reason. Unknown reasons
// are treated as retriable — the safest default for something we couldn't
// classify.
func (r FailureReason) Class() Class {
	switch r {
	case ReasonTransportTransient, ReasonAuthTimeout, ReasonCaptcha,
		ReasonSessionLost, ReasonBrowserError, ReasonStateUncertain,
		ReasonPaymentRecoveredRecheck, ReasonPasskeyBlackScreen:
		return ClassRetriable
	case ReasonPaymentPending:
		return ClassScheduledRetry
	case ReasonAccountDisabled, ReasonPhoneVerification,
		ReasonPaymentMethodIssue, ReasonPaymentDelayExceeded:
		return ClassTerminal
	default:
		return ClassRetriable
	}
}

// ImmediateRetry reports whether the outer pipeline should re-run the
// attempt right away, with no backoff, rather than waiting for the next
// scheduled tick.
func (r FailureReason) ImmediateRetry() bool {
	return r == ReasonPaymentRecoveredRecheck
}

// Outcome is the typed result of one Subscription Workflow attempt.
type Outcome struct {
	Success bool

	// Set on success: the new status and the verified next billing date.
	NewStatus          Status
	NewBillingDate     string
	NewBillingDateTime time.Time
	NewBillingDateSet  bool

	// Set on failure.
	Reason FailureReason

	// Human-readable summary, written verbatim (plus a timestamp) to
	// resultText by the Result Writer.
	Summary string
}
