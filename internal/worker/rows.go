package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/domain"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

// SheetRows is the default Rows implementation: it reads the
// Integrated Worker tab through the Sheet Gateway, parses each Record
// into a domain.TaskRow (combining date + time-of-day into
// ScheduledInstant via the Clock), and resolves profileId through the
// Profile Mapping tab with Gmail-aware email normalization (spec §4.2,
// §6).
type SheetRows struct {
	gw         *sheetsgw.Gateway
	clock      *clock.Clock
	workerTab  string
	mappingTab string
}

func NewSheetRows(gw *sheetsgw.Gateway, c *clock.Clock, workerTab, mappingTab string) *SheetRows {
	return &SheetRows{gw: gw, clock: c, workerTab: workerTab, mappingTab: mappingTab}
}

// Fetch reads the Integrated Worker tab and parses every row. Rows
// whose billing date/time cells don't parse are still returned — they
// simply carry ScheduledInstantSet=false, which the Task Filter's
// predicates already treat as ineligible for either queue (spec §3
// Invariants: "rows with unparseable date/time are never eligible").
func (r *SheetRows) Fetch(ctx context.Context) ([]domain.TaskRow, error) {
	records, err := r.gw.ReadRange(ctx, r.workerTab, nil)
	if err != nil {
		return nil, fmt.Errorf("worker: fetch task rows: %w", err)
	}

	rows := make([]domain.TaskRow, 0, len(records))
	for i, rec := range records {
		row := r.parseRow(rec)
		// Data rows start at sheet row 2 (row 1 is the header).
		row.RowIndex = i + 2
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *SheetRows) parseRow(rec sheetsgw.Record) domain.TaskRow {
	row := domain.TaskRow{
		Email:              strings.TrimSpace(rec["email"]),
		Password:           rec["password"],
		RecoveryEmail:      rec["recoveryEmail"],
		TOTPSecret:         rec["totpSecret"],
		Status:             domain.Status(strings.TrimSpace(rec["status"])),
		NextBillingDate:    rec["nextBillingDate"],
		ScheduledTimeOfDay: rec["scheduledTimeOfDay"],
		ResultText:         rec["resultText"],
		LockValue:          rec["lockValue"],
	}

	if n, err := strconv.Atoi(strings.TrimSpace(rec["retryCount"])); err == nil {
		row.RetryCount = n
	}

	if instant, ok := r.clock.Combine(row.NextBillingDate, row.ScheduledTimeOfDay); ok {
		row.ScheduledInstant = instant
		row.ScheduledInstantSet = true
	}

	if t, ok := r.clock.ParseLongStamp(rec["paymentPendingFirstSeenAt"]); ok {
		row.PaymentPendingFirstSeenAt = t
		row.PaymentPendingFirstSeenIsSet = true
	}
	if t, ok := r.clock.ParseLongStamp(rec["paymentPendingNextRetryAt"]); ok {
		row.PaymentPendingNextRetryAt = t
		row.PaymentPendingNextRetryIsSet = true
	}

	return row
}

// ProfileID resolves email to its mapped profileId via the Profile
// Mapping tab, normalizing both sides of the comparison.
func (r *SheetRows) ProfileID(ctx context.Context, email string) (string, error) {
	records, err := r.gw.ReadRange(ctx, r.mappingTab, []string{"email", "profileId"})
	if err != nil {
		return "", fmt.Errorf("worker: fetch profile mapping: %w", err)
	}

	want := sheetsgw.NormalizeEmail(email)
	for _, rec := range records {
		if sheetsgw.NormalizeEmail(rec["email"]) == want {
			profileID := strings.TrimSpace(rec["profileId"])
			if profileID == "" {
				continue
			}
			return profileID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrProfileNotMapped, email)
}
