package taskfilter

import (
	"testing"
	"time"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/configstore"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
)

func seoulClock(t *testing.T) *clock.Clock {
	t.Helper()
	c, err := clock.New("Asia/Seoul")
	if err != nil {
		t.Fatalf("clock.New: %v", err)
	}
	return c
}

func baseCfg() configstore.Snapshot {
	return configstore.Snapshot{
		PauseAfterMinutes:    30,
		ResumeBeforeMinutes:  60,
		MaxRetries:           5,
		PaymentRetryMaxHours: 24,
	}
}

func TestPartition_PauseBoundaryInclusive(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 25, 7, 45, 0, 0, c.Now().Location())
	scheduled := now.Add(-30 * time.Minute) // exactly pauseAfterMinutes ago

	row := domain.TaskRow{
		RowIndex: 2, Status: domain.StatusActive,
		ScheduledInstant: scheduled, ScheduledInstantSet: true,
	}

	res := Partition([]domain.TaskRow{row}, now, baseCfg(), c)
	if len(res.Pause) != 1 {
		t.Fatalf("expected row on pause queue at exact boundary, got %+v", res)
	}
}

func TestPartition_ResumeBoundaryInclusive(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 25, 6, 15, 0, 0, c.Now().Location())
	scheduled := now.Add(60 * time.Minute) // exactly resumeBeforeMinutes ahead

	row := domain.TaskRow{
		RowIndex: 2, Status: domain.StatusPaused,
		ScheduledInstant: scheduled, ScheduledInstantSet: true,
	}

	res := Partition([]domain.TaskRow{row}, now, baseCfg(), c)
	if len(res.Resume) != 1 {
		t.Fatalf("expected row on resume queue at exact boundary, got %+v", res)
	}
}

func TestPartition_ResumeFarInFutureNotEligible(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 25, 6, 15, 0, 0, c.Now().Location())
	scheduled := now.Add(10 * time.Hour) // well beyond resumeBeforeMinutes

	row := domain.TaskRow{
		RowIndex: 2, Status: domain.StatusPaused,
		ScheduledInstant: scheduled, ScheduledInstantSet: true,
	}

	res := Partition([]domain.TaskRow{row}, now, baseCfg(), c)
	if len(res.Resume) != 0 {
		t.Fatalf("row scheduled far in the future must not be resume-eligible, got %+v", res)
	}
}

func TestPartition_LockedRowExcluded(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 25, 7, 45, 0, 0, c.Now().Location())
	row := domain.TaskRow{
		RowIndex: 2, Status: domain.StatusActive,
		ScheduledInstant: now.Add(-time.Hour), ScheduledInstantSet: true,
		LockValue: "other-worker|" + c.FormatLongStamp(now.Add(time.Hour)),
	}

	res := Partition([]domain.TaskRow{row}, now, baseCfg(), c)
	if len(res.Pause) != 0 {
		t.Fatalf("locked row must be excluded, got %+v", res)
	}
}

func TestPartition_ExpiredLockIsStealable(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 25, 7, 45, 0, 0, c.Now().Location())
	row := domain.TaskRow{
		RowIndex: 2, Status: domain.StatusActive,
		ScheduledInstant: now.Add(-time.Hour), ScheduledInstantSet: true,
		LockValue: "other-worker|" + c.FormatLongStamp(now.Add(-time.Minute)),
	}

	res := Partition([]domain.TaskRow{row}, now, baseCfg(), c)
	if len(res.Pause) != 1 {
		t.Fatalf("row with expired lock must be eligible, got %+v", res)
	}
}

func TestPartition_PaymentRetryAgedOutGivesUp(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 26, 8, 0, 0, 0, c.Now().Location())
	row := domain.TaskRow{
		RowIndex: 2, Status: domain.StatusActive,
		PaymentPendingFirstSeenAt:    now.Add(-25 * time.Hour),
		PaymentPendingFirstSeenIsSet: true,
		PaymentPendingNextRetryAt:    now.Add(-time.Minute),
		PaymentPendingNextRetryIsSet: true,
	}

	res := Partition([]domain.TaskRow{row}, now, baseCfg(), c)
	if len(res.PaymentRetry) != 0 || len(res.GiveUp) != 1 {
		t.Fatalf("expected give-up classification, got %+v", res)
	}
}

func TestPartition_PaymentRetryDueOrdering(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 26, 8, 0, 0, 0, c.Now().Location())

	mk := func(idx int, retryAt time.Time) domain.TaskRow {
		return domain.TaskRow{
			RowIndex: idx, Status: domain.StatusActive,
			PaymentPendingFirstSeenAt: now.Add(-time.Hour), PaymentPendingFirstSeenIsSet: true,
			PaymentPendingNextRetryAt: retryAt, PaymentPendingNextRetryIsSet: true,
		}
	}
	rows := []domain.TaskRow{
		mk(3, now.Add(-time.Minute)),
		mk(2, now.Add(-10*time.Minute)),
	}

	res := Partition(rows, now, baseCfg(), c)
	if len(res.PaymentRetry) != 2 {
		t.Fatalf("expected both rows due, got %+v", res)
	}
	if res.PaymentRetry[0].RowIndex != 2 {
		t.Fatalf("expected earliest retryAt first, got order %+v", res.PaymentRetry)
	}
}

func TestPartition_MaxRetriesExcludes(t *testing.T) {
	c := seoulClock(t)
	now := time.Date(2025, 12, 25, 7, 45, 0, 0, c.Now().Location())
	row := domain.TaskRow{
		RowIndex: 2, Status: domain.StatusActive,
		ScheduledInstant: now.Add(-time.Hour), ScheduledInstantSet: true,
		RetryCount: 5,
	}

	res := Partition([]domain.TaskRow{row}, now, baseCfg(), c)
	if len(res.Pause) != 0 {
		t.Fatalf("row at maxRetries must be excluded, got %+v", res)
	}
}
