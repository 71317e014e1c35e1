// Package resultwriter is the Result Writer (spec §4.9): it commits one
// typed Outcome back to the Integrated Worker tab as a single batched
// write per row, computes the payment-retry backoff schedule, and fans
// terminal-failure categories out to the notify Dispatcher.
package resultwriter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/configstore"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
	"github.com/averyhale/ytprem-scheduler/internal/metrics"
	"github.com/averyhale/ytprem-scheduler/internal/notify"
	"github.com/averyhale/ytprem-scheduler/internal/rowlock"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

// Columns is the A1 column-letter mapping for the Integrated Worker tab.
// Physical mapping lives entirely here, confined out of the rest of the
// system per spec §9 "Opaque sheet columns -> named fields."
type Columns struct {
	Status                    string
	NextBillingDate           string
	ResultText                string
	RetryCount                string
	LockValue                 string
	PaymentPendingFirstSeenAt string
	PaymentPendingNextRetryAt string
}

// paymentBackoffSchedule is the source-derived 15/30/60/120-minute
// schedule (spec §4.9, §9 Open Question — "not a proven optimum,
// left configurable" in spirit; the ladder itself is fixed here and
// tuned only by how many attempts have already been made).
var paymentBackoffSchedule = []time.Duration{
	15 * time.Minute,
	30 * time.Minute,
	60 * time.Minute,
	120 * time.Minute,
}

func paymentBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(paymentBackoffSchedule) {
		return paymentBackoffSchedule[len(paymentBackoffSchedule)-1]
	}
	return paymentBackoffSchedule[attempt]
}

// paymentAttemptIndex derives how many rungs of the backoff ladder have
// already elapsed since paymentPendingFirstSeenAt, purely from elapsed
// wall-clock time rather than a dedicated counter — retryCount is reset
// to 0 on success and is never incremented by the payment-pending branch
// (only retriableWrites increments it), so it cannot key the
// ladder. Elapsed time is the only other state a payment-pending row
// carries, and it advances monotonically across re-attempts, so the
// ladder still grows 15 -> 30 -> 60 -> 120 even though nothing is
// mutated beyond the two payment-pending timestamp cells.
func paymentAttemptIndex(elapsed time.Duration) int {
	cumulative := time.Duration(0)
	for i, step := range paymentBackoffSchedule {
		cumulative += step
		if elapsed < cumulative {
			return i
		}
	}
	return len(paymentBackoffSchedule)
}

// Writer is the Result Writer.
type Writer struct {
	gw     *sheetsgw.Gateway
	clock  *clock.Clock
	notify *notify.Dispatcher
	digest *notify.DigestScheduler // optional; nil disables the digest channel
	tab    string
	cols   Columns
	logger *slog.Logger
}

func New(gw *sheetsgw.Gateway, c *clock.Clock, dispatcher *notify.Dispatcher, digest *notify.DigestScheduler, tab string, cols Columns, logger *slog.Logger) *Writer {
	return &Writer{gw: gw, clock: c, notify: dispatcher, digest: digest, tab: tab, cols: cols, logger: logger.With("component", "resultwriter")}
}

func (w *Writer) cellA1(column string, rowIndex int) string {
	return fmt.Sprintf("%s%d", column, rowIndex)
}

// Commit writes outcome back to row as one batched update, clears the
// lock in the same batch (spec §5 "result commit and lock release MAY
// be a single batched write"), and fans terminal failures out to
// notifications. now is the tick's instant, used for resultText
// timestamps; the payment-pending branch takes its first-seen and
// next-retry instants from the writer's clock at commit time instead.
//
// For success, retriable and terminal outcomes Commit is idempotent:
// re-committing the same outcome to the same row converges to the same
// cell values (spec §8's round-trip law) because those branches compute
// their target state purely from outcome, row and now. A payment-pending
// re-commit keeps the earliest paymentPendingFirstSeenAt, but its
// next-retry cell depends on the clock's current time.
func (w *Writer) Commit(ctx context.Context, row domain.TaskRow, outcome domain.Outcome, cfg configstore.Snapshot, now time.Time) error {
	writes := w.buildWrites(row, outcome, now)
	if err := w.gw.WriteBatch(ctx, w.tab, writes); err != nil {
		return fmt.Errorf("resultwriter: commit row %d: %w", row.RowIndex, err)
	}
	if anyNotifyEnabled(cfg) {
		w.dispatchNotification(ctx, row, outcome, cfg)
	}
	return nil
}

func anyNotifyEnabled(cfg configstore.Snapshot) bool {
	return cfg.NotifyEmail || cfg.NotifyWebhook || cfg.NotifyConsole || cfg.NotifyDigest || cfg.NotifyPagerDuty
}

func (w *Writer) buildWrites(row domain.TaskRow, outcome domain.Outcome, now time.Time) []sheetsgw.CellWrite {
	stamp := w.clock.FormatShortStamp(now)

	if outcome.Success {
		return w.successWrites(row, outcome, stamp)
	}

	switch outcome.Reason {
	case domain.ReasonPaymentPending:
		return w.paymentPendingWrites(row, stamp)
	default:
		if outcome.Reason.Class() == domain.ClassTerminal {
			return w.terminalWrites(row, outcome, stamp)
		}
		return w.retriableWrites(row, outcome, stamp)
	}
}

func (w *Writer) successWrites(row domain.TaskRow, outcome domain.Outcome, stamp string) []sheetsgw.CellWrite {
	resultText := fmt.Sprintf("%s %s", outcome.Summary, stamp)
	writes := []sheetsgw.CellWrite{
		{CellA1: w.cellA1(w.cols.Status, row.RowIndex), Value: string(outcome.NewStatus)},
		{CellA1: w.cellA1(w.cols.ResultText, row.RowIndex), Value: resultText},
		{CellA1: w.cellA1(w.cols.RetryCount, row.RowIndex), Value: "0"},
		{CellA1: w.cellA1(w.cols.LockValue, row.RowIndex), Value: ""},
		{CellA1: w.cellA1(w.cols.PaymentPendingFirstSeenAt, row.RowIndex), Value: ""},
		{CellA1: w.cellA1(w.cols.PaymentPendingNextRetryAt, row.RowIndex), Value: ""},
	}
	if outcome.NewBillingDateSet {
		writes = append(writes, sheetsgw.CellWrite{
			CellA1: w.cellA1(w.cols.NextBillingDate, row.RowIndex),
			Value:  w.clock.FormatDate(outcome.NewBillingDateTime),
		})
	}
	return writes
}

// paymentPendingWrites schedules the next payment-retry instant,
// preserving the earliest paymentPendingFirstSeenAt across repeated
// attempts on the same row (spec §4.9).
func (w *Writer) paymentPendingWrites(row domain.TaskRow, stamp string) []sheetsgw.CellWrite {
	metrics.PaymentPendingTotal.Inc()
	now := w.clock.Now()

	firstSeen := now
	if row.PaymentPendingFirstSeenIsSet {
		firstSeen = row.PaymentPendingFirstSeenAt
	}

	nextRetry := now.Add(paymentBackoff(paymentAttemptIndex(now.Sub(firstSeen))))

	resultText := fmt.Sprintf("payment pending %s", stamp)
	return []sheetsgw.CellWrite{
		{CellA1: w.cellA1(w.cols.ResultText, row.RowIndex), Value: resultText},
		{CellA1: w.cellA1(w.cols.LockValue, row.RowIndex), Value: ""},
		{CellA1: w.cellA1(w.cols.PaymentPendingFirstSeenAt, row.RowIndex), Value: w.clock.FormatLongStamp(firstSeen)},
		{CellA1: w.cellA1(w.cols.PaymentPendingNextRetryAt, row.RowIndex), Value: w.clock.FormatLongStamp(nextRetry)},
	}
}

func (w *Writer) retriableWrites(row domain.TaskRow, outcome domain.Outcome, stamp string) []sheetsgw.CellWrite {
	resultText := fmt.Sprintf("%s: %s %s", outcome.Reason, outcome.Summary, stamp)
	return []sheetsgw.CellWrite{
		{CellA1: w.cellA1(w.cols.ResultText, row.RowIndex), Value: resultText},
		{CellA1: w.cellA1(w.cols.RetryCount, row.RowIndex), Value: fmt.Sprintf("%d", row.RetryCount+1)},
		{CellA1: w.cellA1(w.cols.LockValue, row.RowIndex), Value: ""},
	}
}

func (w *Writer) terminalWrites(row domain.TaskRow, outcome domain.Outcome, stamp string) []sheetsgw.CellWrite {
	resultText := fmt.Sprintf("%s: %s %s", outcome.Reason, outcome.Summary, stamp)
	return []sheetsgw.CellWrite{
		{CellA1: w.cellA1(w.cols.ResultText, row.RowIndex), Value: resultText},
		{CellA1: w.cellA1(w.cols.LockValue, row.RowIndex), Value: ""},
		{CellA1: w.cellA1(w.cols.PaymentPendingFirstSeenAt, row.RowIndex), Value: ""},
		{CellA1: w.cellA1(w.cols.PaymentPendingNextRetryAt, row.RowIndex), Value: ""},
	}
}

// CommitGiveUp terminates a row whose payment-pending window aged past
// paymentRetryMaxHours (spec §4.5, §4.9) without ever running another
// attempt against it.
func (w *Writer) CommitGiveUp(ctx context.Context, row domain.TaskRow, cfg configstore.Snapshot, now time.Time) error {
	metrics.PaymentDelayExceededTotal.Inc()
	stamp := w.clock.FormatShortStamp(now)
	resultText := fmt.Sprintf("payment delayed >%dh %s", cfg.PaymentRetryMaxHours, stamp)
	writes := []sheetsgw.CellWrite{
		{CellA1: w.cellA1(w.cols.ResultText, row.RowIndex), Value: resultText},
		{CellA1: w.cellA1(w.cols.LockValue, row.RowIndex), Value: ""},
		{CellA1: w.cellA1(w.cols.PaymentPendingFirstSeenAt, row.RowIndex), Value: ""},
		{CellA1: w.cellA1(w.cols.PaymentPendingNextRetryAt, row.RowIndex), Value: ""},
	}
	if err := w.gw.WriteBatch(ctx, w.tab, writes); err != nil {
		return fmt.Errorf("resultwriter: give-up row %d: %w", row.RowIndex, err)
	}
	if anyNotifyEnabled(cfg) {
		ev := notify.Event{
			Category: "payment_delay",
			Email:    row.Email,
			Summary:  resultText,
		}
		w.notify.Dispatch(ctx, ev, channelsFor(cfg))
		if cfg.NotifyDigest && w.digest != nil {
			w.digest.Accumulate(ev)
		}
	}
	return nil
}

func channelsFor(cfg configstore.Snapshot) map[string]bool {
	return notify.EnabledChannels(cfg.NotifyEmail, cfg.NotifyWebhook, cfg.NotifyConsole, cfg.NotifyPagerDuty)
}

func (w *Writer) dispatchNotification(ctx context.Context, row domain.TaskRow, outcome domain.Outcome, cfg configstore.Snapshot) {
	if outcome.Success {
		return
	}
	category, ok := notifyCategory(outcome.Reason)
	if !ok {
		return
	}
	ev := notify.Event{
		Category: category,
		Email:    row.Email,
		Summary:  outcome.Summary,
	}
	w.notify.Dispatch(ctx, ev, channelsFor(cfg))
	if cfg.NotifyDigest && w.digest != nil {
		w.digest.Accumulate(ev)
	}
}

func notifyCategory(reason domain.FailureReason) (string, bool) {
	switch reason {
	case domain.ReasonAccountDisabled, domain.ReasonPhoneVerification:
		return "permanent_failure", true
	case domain.ReasonPaymentMethodIssue:
		return "payment_method_issue", true
	case domain.ReasonPaymentDelayExceeded:
		return "payment_delay", true
	default:
		return "", false
	}
}

// ReleaseLockOnPanic only clears the row's lock, leaving retryCount and
// resultText untouched. The Worker Loop does not call it: the loop
// recovers a panicking attempt into a session_lost outcome and writes
// that through Commit, which clears the lock in the same batch.
func (w *Writer) ReleaseLockOnPanic(ctx context.Context, row domain.TaskRow, lockMgr *rowlock.Manager) error {
	return lockMgr.Release(ctx, row.RowIndex)
}
