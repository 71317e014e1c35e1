// Package taskfilter partitions raw Task Rows into the three ordered
// per-tick queues described in spec §4.5, plus a fourth "give up" set for
// rows whose payment-pending window has aged past the cap.
package taskfilter

import (
	"sort"
	"time"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/configstore"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
	"github.com/averyhale/ytprem-scheduler/internal/rowlock"
)

// Result holds the four queues produced by Partition.
type Result struct {
	Resume       []domain.TaskRow
	Pause        []domain.TaskRow
	PaymentRetry []domain.TaskRow
	GiveUp       []domain.TaskRow
}

// Partition classifies rows against now and the current config snapshot.
// c is used only to evaluate lock expiry; rows are expected to already
// carry a parsed ScheduledInstant (domain.TaskRow.ScheduledInstantSet).
func Partition(rows []domain.TaskRow, now time.Time, cfg configstore.Snapshot, c *clock.Clock) Result {
	var res Result

	for _, r := range rows {
		if r.RetryCount >= cfg.MaxRetries {
			continue
		}
		if !lockIsFree(r.LockValue, now, c) {
			continue
		}

		switch {
		case r.PaymentPendingNextRetryIsSet:
			if eligibleForPaymentRetry(r, now, cfg) {
				res.PaymentRetry = append(res.PaymentRetry, r)
			} else if agedOut(r, now, cfg) {
				res.GiveUp = append(res.GiveUp, r)
			}
		case eligibleForResume(r, now, cfg):
			res.Resume = append(res.Resume, r)
		case eligibleForPause(r, now, cfg):
			res.Pause = append(res.Pause, r)
		}
	}

	sortByScheduledInstant(res.Resume)
	sortByScheduledInstant(res.Pause)
	sort.Slice(res.PaymentRetry, func(i, j int) bool {
		return res.PaymentRetry[i].PaymentPendingNextRetryAt.Before(res.PaymentRetry[j].PaymentPendingNextRetryAt)
	})

	return res
}

func lockIsFree(raw string, now time.Time, c *clock.Clock) bool {
	v, ok := rowlock.Parse(raw, c)
	if !ok {
		return true
	}
	return v.Expired(now)
}

func eligibleForResume(r domain.TaskRow, now time.Time, cfg configstore.Snapshot) bool {
	if r.Status != domain.StatusPaused || !r.ScheduledInstantSet {
		return false
	}
	if r.PaymentPendingNextRetryIsSet {
		return false
	}
	return !r.ScheduledInstant.After(now.Add(time.Duration(cfg.ResumeBeforeMinutes) * time.Minute))
}

func eligibleForPause(r domain.TaskRow, now time.Time, cfg configstore.Snapshot) bool {
	if r.Status != domain.StatusActive || !r.ScheduledInstantSet {
		return false
	}
	if r.PaymentPendingNextRetryIsSet {
		return false
	}
	threshold := r.ScheduledInstant.Add(time.Duration(cfg.PauseAfterMinutes) * time.Minute)
	return !now.Before(threshold)
}

func eligibleForPaymentRetry(r domain.TaskRow, now time.Time, cfg configstore.Snapshot) bool {
	if !r.PaymentPendingNextRetryIsSet || now.Before(r.PaymentPendingNextRetryAt) {
		return false
	}
	if !r.PaymentPendingFirstSeenIsSet {
		return false
	}
	return now.Sub(r.PaymentPendingFirstSeenAt) < time.Duration(cfg.PaymentRetryMaxHours)*time.Hour
}

func agedOut(r domain.TaskRow, now time.Time, cfg configstore.Snapshot) bool {
	if !r.PaymentPendingFirstSeenIsSet {
		return false
	}
	return now.Sub(r.PaymentPendingFirstSeenAt) >= time.Duration(cfg.PaymentRetryMaxHours)*time.Hour
}

func sortByScheduledInstant(rows []domain.TaskRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].ScheduledInstant.Equal(rows[j].ScheduledInstant) {
			return rows[i].ScheduledInstant.Before(rows[j].ScheduledInstant)
		}
		return rows[i].RetryCount < rows[j].RetryCount
	})
}
