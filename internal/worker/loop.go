// Package worker is the outermost driver (spec §4.10, C10): tick ->
// reload config -> fetch rows -> filter -> for each due row { lock, run,
// commit, unlock }. Its ticker-driven top-level loop is adapted from the
// teacher's scheduler.Worker, with the claim/execute/complete-or-reschedule
// rhythm regrounded on rows and sheet cells instead of a Postgres job
// queue. Rows are attempted one at a time on the loop's own goroutine.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/averyhale/ytprem-scheduler/internal/authdriver"
	"github.com/averyhale/ytprem-scheduler/internal/browsersession"
	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/configstore"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
	"github.com/averyhale/ytprem-scheduler/internal/metrics"
	"github.com/averyhale/ytprem-scheduler/internal/requestid"
	"github.com/averyhale/ytprem-scheduler/internal/resultwriter"
	"github.com/averyhale/ytprem-scheduler/internal/rowlock"
	"github.com/averyhale/ytprem-scheduler/internal/taskfilter"
	"github.com/averyhale/ytprem-scheduler/internal/workflow"
)

// Rows is the read+parse boundary between the Sheet Gateway's raw
// Records and the domain.TaskRow view the rest of the core consumes.
// It is injected so the Worker Loop never imports sheetsgw's Record
// shape directly.
type Rows interface {
	Fetch(ctx context.Context) ([]domain.TaskRow, error)
	ProfileID(ctx context.Context, email string) (string, error)
}

// Loop is the Worker Loop (C10).
type Loop struct {
	clock    *clock.Clock
	cfg      *configstore.Store
	rows     Rows
	lockMgr  *rowlock.Manager
	sessions *browsersession.Provider
	writer   *resultwriter.Writer
	workerID string
	logger   *slog.Logger

	inFlightProfiles *profileGuard
}

// New builds a Loop. workerID identifies this process (or pool slot)
// for the lock column; it is the same id the Row Lock Manager was
// constructed with.
func New(
	c *clock.Clock,
	cfg *configstore.Store,
	rows Rows,
	lockMgr *rowlock.Manager,
	sessions *browsersession.Provider,
	writer *resultwriter.Writer,
	workerID string,
	logger *slog.Logger,
) *Loop {
	return &Loop{
		clock: c, cfg: cfg, rows: rows, lockMgr: lockMgr,
		sessions: sessions, writer: writer, workerID: workerID,
		logger:           logger.With("component", "worker", "worker_id", workerID),
		inFlightProfiles: newProfileGuard(),
	}
}

// Run blocks, firing one tick immediately and then every
// snapshot.TickSeconds, until ctx is cancelled. A cancellation is
// checked at the top of each tick and between rows (spec §5) — it
// never interrupts an in-flight attempt.
func (l *Loop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			l.logger.Info("shutdown signal observed, exiting")
			return
		}

		l.tick(ctx)

		snap := l.cfg.Load(ctx)
		select {
		case <-ctx.Done():
			l.logger.Info("shutdown signal observed during sleep, exiting")
			return
		case <-time.After(time.Duration(snap.TickSeconds) * time.Second):
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	tickStart := time.Now()
	defer func() { metrics.TickDuration.Observe(time.Since(tickStart).Seconds()) }()

	snap := l.cfg.Load(ctx)
	now := l.clock.Now()

	allRows, err := l.rows.Fetch(ctx)
	if err != nil {
		l.logger.Error("fetch rows failed", "error", err)
		return
	}

	partitioned := taskfilter.Partition(allRows, now, snap, l.clock)
	metrics.RowsPartitionedTotal.WithLabelValues("resume").Add(float64(len(partitioned.Resume)))
	metrics.RowsPartitionedTotal.WithLabelValues("pause").Add(float64(len(partitioned.Pause)))
	metrics.RowsPartitionedTotal.WithLabelValues("payment_retry").Add(float64(len(partitioned.PaymentRetry)))
	metrics.RowsPartitionedTotal.WithLabelValues("give_up").Add(float64(len(partitioned.GiveUp)))
	l.logger.Info("tick partitioned rows",
		"resume_due", len(partitioned.Resume),
		"pause_due", len(partitioned.Pause),
		"payment_retry_due", len(partitioned.PaymentRetry),
		"give_up", len(partitioned.GiveUp))

	for _, row := range partitioned.GiveUp {
		if err := l.writer.CommitGiveUp(ctx, row, snap, now); err != nil {
			l.logger.Error("commit give-up failed", "email", row.Email, "error", err)
		}
	}

	// Payment-retry first (time-sensitive, cheap to give up on), then
	// resume (a missed resume is user-visible), then pause (spec §4.10
	// ordering rationale).
	queue := make([]queuedRow, 0, len(partitioned.PaymentRetry)+len(partitioned.Resume)+len(partitioned.Pause))
	for _, r := range partitioned.PaymentRetry {
		queue = append(queue, queuedRow{row: r, intent: domain.IntentPause})
	}
	for _, r := range partitioned.Resume {
		queue = append(queue, queuedRow{row: r, intent: domain.IntentResume})
	}
	for _, r := range partitioned.Pause {
		queue = append(queue, queuedRow{row: r, intent: domain.IntentPause})
	}

	for _, qr := range queue {
		if ctx.Err() != nil {
			return
		}
		l.runRow(context.WithoutCancel(ctx), qr, snap, now)
	}
}

type queuedRow struct {
	row    domain.TaskRow
	intent domain.Intent
}

func (l *Loop) runRow(ctx context.Context, qr queuedRow, snap configstore.Snapshot, now time.Time) {
	row := qr.row

	profileID, err := l.rows.ProfileID(ctx, row.Email)
	if err != nil {
		l.logger.Warn("no profile mapping, skipping row", "email", row.Email, "error", err)
		return
	}
	row.ProfileID = profileID

	if !l.inFlightProfiles.acquire(profileID) {
		l.logger.Debug("profile already in flight this tick, skipping", "profile_id", profileID)
		return
	}
	defer l.inFlightProfiles.release(profileID)

	ttl := time.Duration(snap.LockTTLSeconds) * time.Second
	claimed, err := l.lockMgr.Claim(ctx, row.RowIndex, row.LockValue, ttl)
	if err != nil {
		l.logger.Warn("lock claim error", "email", row.Email, "error", err)
		return
	}
	if !claimed {
		return
	}

	attemptID := requestid.NewAttemptID()
	ctx = requestid.WithAttemptID(ctx, attemptID)

	outcome := l.runAttemptSafely(ctx, row, qr.intent, snap)

	metrics.JobsCompletedTotal.WithLabelValues(outcomeLabel(outcome)).Inc()

	if err := l.writer.Commit(ctx, row, outcome, snap, now); err != nil {
		l.logger.Error("commit failed", "email", row.Email, "error", err)
		// Release defensively; a failed commit may have left the lock
		// column untouched, and the row must not stay claimed past the
		// attempt's intent.
		if relErr := l.lockMgr.Release(ctx, row.RowIndex); relErr != nil {
			l.logger.Warn("lock release after failed commit also failed", "email", row.Email, "error", relErr)
		}
	}
}

// runAttemptSafely opens a session, runs the Subscription Workflow, and
// guarantees session teardown and lock safety even if the workflow
// panics (spec §5's "robust to panics from any component").
func (l *Loop) runAttemptSafely(ctx context.Context, row domain.TaskRow, intent domain.Intent, snap configstore.Snapshot) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("attempt panicked, treating as retriable", "email", row.Email, "panic", r)
			outcome = domain.Outcome{Reason: domain.ReasonSessionLost, Summary: fmt.Sprintf("panic recovered: %v", r)}
		}
	}()

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	sess, err := l.sessions.Open(ctx, row.ProfileID)
	if err != nil {
		return domain.Outcome{Reason: domain.ReasonSessionLost, Summary: "session open failed: " + err.Error()}
	}
	defer sess.Close(ctx)

	wf := &workflow.Workflow{
		Clock: l.clock,
		Credentials: authdriver.Credentials{
			Email:         row.Email,
			Password:      row.Password,
			RecoveryEmail: row.RecoveryEmail,
			TOTPSecret:    row.TOTPSecret,
		},
		Intent:     intent,
		PriorDate:  row.NextBillingDate,
		MaxRetries: snap.MaxRetries,
		Open: func(ctx context.Context) (*browsersession.Session, error) {
			return l.sessions.Open(ctx, row.ProfileID)
		},
	}

	return wf.Run(ctx, sess)
}

func outcomeLabel(o domain.Outcome) string {
	if o.Success {
		return "success"
	}
	return string(o.Reason)
}
