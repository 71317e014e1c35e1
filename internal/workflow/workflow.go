package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/averyhale/ytprem-scheduler/internal/authdriver"
	"github.com/averyhale/ytprem-scheduler/internal/browsersession"
	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
)

// Opener reopens a fresh session bound to the same profile, for the
// single bounded re-check performed by APPLY_INTENT when a row is
// already in its target state (spec §4.8). It is the Worker Loop's
// responsibility to supply one backed by browsersession.Provider.Open.
type Opener func(ctx context.Context) (*browsersession.Session, error)

// Workflow runs one attempt against an authenticated-or-soon-to-be
// session.
type Workflow struct {
	Clock       *clock.Clock
	Credentials authdriver.Credentials
	Intent      domain.Intent
	PriorDate   string // the row's nextBillingDate before this attempt
	MaxRetries  int    // stability-sample bound (spec §4.8)

	Open Opener

	paymentRecoveryHandled bool
}

// Run drives Start -> ... -> Done|Fail for one session and returns the
// typed Outcome the Result Writer will commit. sess is the already
// open, health-checked session for this attempt; Run takes ownership of
// it only for the duration of the call — the caller still closes it.
func (w *Workflow) Run(ctx context.Context, sess *browsersession.Session) domain.Outcome {
	driver := authdriver.New(sess, w.Credentials)

	page, result := driver.Dispatch(ctx)
	if result.Done() {
		return w.failOutcome(result)
	}
	if page != authdriver.PageLoggedIn && page != authdriver.PageLoggedInPremium {
		reason := domain.ReasonStateUncertain
		return w.failOutcome(authdriver.HandlerResult{RetriableFailure: &reason})
	}

	if err := chromedp.Run(sess.Context(), chromedp.Navigate(membershipURL)); err != nil {
		return domain.Outcome{Reason: domain.ReasonSessionLost, Summary: "navigate to membership failed"}
	}

	snap, err := waitForActionSurface(sess.Context())
	if err != nil {
		return domain.Outcome{Reason: domain.ReasonSessionLost, Summary: "membership page did not render"}
	}

	detected, err := w.detectCurrentState(sess.Context(), snap)
	if err != nil {
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "membership state detection failed: " + err.Error()}
	}
	if detected == DetectedUncertain {
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "membership state could not be stably determined"}
	}

	return w.applyIntent(ctx, sess, detected)
}

func (w *Workflow) failOutcome(r authdriver.HandlerResult) domain.Outcome {
	switch {
	case r.TerminalFailure != nil:
		return domain.Outcome{Reason: *r.TerminalFailure, Summary: string(*r.TerminalFailure)}
	case r.RetriableFailure != nil:
		return domain.Outcome{Reason: *r.RetriableFailure, Summary: string(*r.RetriableFailure)}
	default:
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "authentication did not reach a logged-in state"}
	}
}

// detectCurrentState takes up to MaxRetries stability samples, stopping
// at the first pair of two consecutive identical samples (spec §4.8).
func (w *Workflow) detectCurrentState(ctx context.Context, first MembershipSnapshot) (DetectedState, error) {
	prev := first
	limit := w.MaxRetries
	if limit <= 0 {
		limit = 3
	}
	for i := 0; i < limit; i++ {
		time.Sleep(200 * time.Millisecond)
		next, err := sampleMembership(ctx)
		if err != nil {
			return DetectedUncertain, err
		}
		if next.equal(prev) {
			return next.classify(), nil
		}
		prev = next
	}
	return DetectedUncertain, nil
}

// applyIntent performs the pause/resume action (or the bounded
// already-in-target-state re-check) and then verifies the result.
func (w *Workflow) applyIntent(ctx context.Context, sess *browsersession.Session, detected DetectedState) domain.Outcome {
	alreadyTarget := (w.Intent == domain.IntentPause && detected == DetectedPaused) ||
		(w.Intent == domain.IntentResume && detected == DetectedActive)

	if alreadyTarget {
		return w.recheckAlreadyInTargetState(ctx, sess)
	}

	switch w.Intent {
	case domain.IntentPause:
		if err := w.runPauseSequence(sess.Context()); err != nil {
			return domain.Outcome{Reason: domain.ReasonBrowserError, Summary: "pause sequence failed: " + err.Error()}
		}
	case domain.IntentResume:
		if err := w.runResumeSequence(sess.Context()); err != nil {
			return domain.Outcome{Reason: domain.ReasonBrowserError, Summary: "resume sequence failed: " + err.Error()}
		}
	}

	return w.verify(sess.Context())
}

// recheckAlreadyInTargetState performs the single bounded re-check
// (spec §4.8, §9 Open Question): close this session, open a fresh one,
// re-detect. If still in the target state, commit success without
// touching the UI again. This re-check never recurses — at most one
// re-open per attempt.
func (w *Workflow) recheckAlreadyInTargetState(ctx context.Context, sess *browsersession.Session) domain.Outcome {
	sess.Close(ctx)
	fresh, err := w.Open(ctx)
	if err != nil {
		return domain.Outcome{Reason: domain.ReasonSessionLost, Summary: "re-check session open failed"}
	}
	defer fresh.Close(ctx)

	if err := chromedp.Run(fresh.Context(), chromedp.Navigate(membershipURL)); err != nil {
		return domain.Outcome{Reason: domain.ReasonSessionLost, Summary: "re-check navigate failed"}
	}
	snap, err := waitForActionSurface(fresh.Context())
	if err != nil {
		return domain.Outcome{Reason: domain.ReasonSessionLost, Summary: "re-check membership page did not render"}
	}
	detected, err := w.detectCurrentState(fresh.Context(), snap)
	if err != nil || detected == DetectedUncertain {
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "re-check state uncertain"}
	}

	wantState := DetectedPaused
	if w.Intent == domain.IntentResume {
		wantState = DetectedActive
	}
	if detected != wantState {
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "re-check disagreed with initial detection"}
	}

	newStatus := domain.StatusPaused
	if w.Intent == domain.IntentResume {
		newStatus = domain.StatusActive
	}
	return domain.Outcome{
		Success:   true,
		NewStatus: newStatus,
		Summary:   fmt.Sprintf("%s confirmed on re-check (already in target state)", w.Intent),
	}
}

func (w *Workflow) runPauseSequence(ctx context.Context) error {
	if err := authdriver.HumanClick(ctx, `[data-action="manage-membership"]`); err != nil {
		return err
	}
	if err := authdriver.HumanClick(ctx, `[data-action="pause-membership"]`); err != nil {
		return err
	}
	return authdriver.HumanClick(ctx, `[data-action="confirm-pause"]`)
}

func (w *Workflow) runResumeSequence(ctx context.Context) error {
	if err := authdriver.HumanClick(ctx, `[data-action="manage-membership"]`); err != nil {
		return err
	}
	if err := authdriver.HumanClick(ctx, `[data-action="resume-membership"]`); err != nil {
		return err
	}

	var hasRecoveryConfirm bool
	_ = chromedp.Run(ctx, chromedp.EvaluateAsDevTools(
		`document.querySelectorAll('[data-action="confirm-payment-recovery"]').length > 0`, &hasRecoveryConfirm))
	if hasRecoveryConfirm {
		if err := authdriver.HumanClick(ctx, `[data-action="confirm-payment-recovery"]`); err != nil {
			return err
		}
		w.paymentRecoveryHandled = true
	}

	return authdriver.HumanClick(ctx, `[data-action="confirm-resume"]`)
}

// verify reads the post-action membership snapshot and classifies the
// result per spec §4.8's VERIFY outcomes.
func (w *Workflow) verify(ctx context.Context) domain.Outcome {
	snap, err := sampleMembership(ctx)
	if err != nil {
		return domain.Outcome{Reason: domain.ReasonSessionLost, Summary: "verify sample failed"}
	}

	refYear := w.Clock.Now().Year()
	parsed, ok := w.Clock.ParseDate(w.PriorDate)
	if ok {
		refYear = parsed.Year()
	}
	newDate, dateOK := ParseBillingDate(snap.BillingDateText, w.Clock.Now().Location(), refYear)

	switch w.Intent {
	case domain.IntentPause:
		return w.verifyPause(snap, newDate, dateOK, ok, parsed)
	case domain.IntentResume:
		return w.verifyResume(snap, newDate, dateOK)
	default:
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "unknown intent"}
	}
}

func (w *Workflow) verifyPause(snap MembershipSnapshot, newDate time.Time, dateOK, priorOK bool, prior time.Time) domain.Outcome {
	if !dateOK {
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "could not parse post-pause billing date"}
	}
	if priorOK && !newDate.After(prior) {
		// Billing date unchanged: the subscription has not renewed yet.
		return domain.Outcome{
			Success: false,
			Reason:  domain.ReasonPaymentPending,
			Summary: "payment pending",
		}
	}
	return domain.Outcome{
		Success:            true,
		NewStatus:          domain.StatusPaused,
		NewBillingDate:     snap.BillingDateText,
		NewBillingDateTime: newDate,
		NewBillingDateSet:  true,
		Summary:            "paused",
	}
}

func (w *Workflow) verifyResume(snap MembershipSnapshot, newDate time.Time, dateOK bool) domain.Outcome {
	if snap.hasUpdatePaymentCTA() {
		return domain.Outcome{Reason: domain.ReasonPaymentMethodIssue, Summary: "resume blocked on payment method"}
	}
	if w.paymentRecoveryHandled {
		return domain.Outcome{Reason: domain.ReasonPaymentRecoveredRecheck, Summary: "payment recovered during resume, needs recheck"}
	}
	if !dateOK {
		return domain.Outcome{Reason: domain.ReasonStateUncertain, Summary: "could not parse post-resume billing date"}
	}
	return domain.Outcome{
		Success:            true,
		NewStatus:          domain.StatusActive,
		NewBillingDate:     snap.BillingDateText,
		NewBillingDateTime: newDate,
		NewBillingDateSet:  true,
		Summary:            "resumed",
	}
}
