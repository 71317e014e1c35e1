package resultwriter

import (
	"log/slog"
	"testing"
	"time"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
	"github.com/averyhale/ytprem-scheduler/internal/notify"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

func TestPaymentBackoffLadder(t *testing.T) {
	cases := []struct {
		attempt int
		want    int // minutes
	}{
		{0, 15},
		{1, 30},
		{2, 60},
		{3, 120},
		{4, 120},
		{100, 120},
		{-1, 15},
	}
	for _, tc := range cases {
		got := paymentBackoff(tc.attempt)
		if got.Minutes() != float64(tc.want) {
			t.Errorf("paymentBackoff(%d) = %s, want %dm", tc.attempt, got, tc.want)
		}
	}
}

func TestPaymentAttemptIndexGrowsWithElapsed(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{14 * time.Minute, 0},
		{15 * time.Minute, 1},
		{44 * time.Minute, 1},
		{45 * time.Minute, 2},
		{104 * time.Minute, 2},
		{105 * time.Minute, 3},
		{224 * time.Minute, 3},
		{225 * time.Minute, 4},
		{10 * time.Hour, 4},
	}
	for _, tc := range cases {
		got := paymentAttemptIndex(tc.elapsed)
		if got != tc.want {
			t.Errorf("paymentAttemptIndex(%s) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

// TestPaymentPendingWrites_BackoffGrowsAcrossReattempts guards against the
// backoff ladder being pinned at 15 minutes forever: retryCount never
// advances on the payment-pending branch (spec §4.9), so the ladder must
// be keyed off elapsed time since paymentPendingFirstSeenAt instead.
// paymentPendingWrites reads the current instant from w.clock.Now(), so
// firstSeen is anchored to real wall-clock time minus a fixed offset
// rather than to an arbitrary fixed instant.
func TestPaymentPendingWrites_BackoffGrowsAcrossReattempts(t *testing.T) {
	c, err := clock.New("Asia/Seoul")
	if err != nil {
		t.Fatalf("clock.New: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(nil, nil))
	w := New(nil, c, notify.NewDispatcher(logger), nil, "Integrated Worker", Columns{
		ResultText:                "I",
		LockValue:                 "J",
		PaymentPendingFirstSeenAt: "L",
		PaymentPendingNextRetryAt: "M",
	}, logger)

	// First pending observation: no prior firstSeen, elapsed == 0.
	writes := w.paymentPendingWrites(domain.TaskRow{RowIndex: 2}, "stamp")
	firstSeenWrite := findCell(t, writes, w.cols.PaymentPendingFirstSeenAt+"2")
	nextRetryWrite := findCell(t, writes, w.cols.PaymentPendingNextRetryAt+"2")

	firstSeen, ok := c.ParseLongStamp(firstSeenWrite)
	if !ok {
		t.Fatalf("parse firstSeen %q", firstSeenWrite)
	}
	nextRetry1, ok := c.ParseLongStamp(nextRetryWrite)
	if !ok {
		t.Fatalf("parse nextRetry %q", nextRetryWrite)
	}
	if d := nextRetry1.Sub(firstSeen); d < 14*time.Minute || d > 16*time.Minute {
		t.Fatalf("first payment-pending backoff = %s, want ~15m", d)
	}

	// Second re-attempt, 45 minutes after firstSeen: ladder must have
	// advanced to the 60-minute rung, not reset to 15.
	rowLate := domain.TaskRow{
		RowIndex:                     2,
		PaymentPendingFirstSeenAt:    firstSeen.Add(-45 * time.Minute),
		PaymentPendingFirstSeenIsSet: true,
	}
	writes2 := w.paymentPendingWrites(rowLate, "stamp")
	nextRetry2Write := findCell(t, writes2, w.cols.PaymentPendingNextRetryAt+"2")
	nextRetry2, ok := c.ParseLongStamp(nextRetry2Write)
	if !ok {
		t.Fatalf("parse nextRetry2 %q", nextRetry2Write)
	}
	if d := nextRetry2.Sub(firstSeen); d < 59*time.Minute || d > 61*time.Minute {
		t.Fatalf("third-rung payment-pending backoff did not advance: nextRetry - firstSeen = %s, want ~60m", d)
	}
}

func findCell(t *testing.T, writes []sheetsgw.CellWrite, cellA1 string) string {
	t.Helper()
	for _, w := range writes {
		if w.CellA1 == cellA1 {
			return w.Value
		}
	}
	t.Fatalf("cell %s not found in writes %+v", cellA1, writes)
	return ""
}

func TestNotifyCategoryMapping(t *testing.T) {
	cases := map[string]bool{
		"account_disabled":     true,
		"phone_verification":   true,
		"payment_method_issue": true,
		"payment_delay_exceeded": true,
		"captcha":              false,
		"auth_timeout":         false,
	}
	for reason, wantOK := range cases {
		_, ok := notifyCategory(domain.FailureReason(reason))
		if ok != wantOK {
			t.Errorf("notifyCategory(%q) ok = %v, want %v", reason, ok, wantOK)
		}
	}
}
