// Package rowlock implements the distributed row-lock protocol (spec
// §4.4): a row is locked by worker W until instant T iff its lockValue
// cell has shape "W|T" with T in the future. Any other content is
// unlocked and stealable. TTL is the only liveness signal — there is no
// "is this worker alive" check, matching the teacher's heartbeat-free
// claim-by-write-then-read pattern in its Worker/JobRepository.Claim.
package rowlock

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/metrics"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

// LockValue is the parsed contents of a lockValue cell.
type LockValue struct {
	WorkerID string
	Expiry   time.Time
}

// Format renders the cell contents "<workerID>|<long stamp>".
func (v LockValue) Format(c *clock.Clock) string {
	return v.WorkerID + "|" + c.FormatLongStamp(v.Expiry)
}

// Expired reports whether v's expiry is at or before now. A lock whose
// expiry equals now exactly is considered expired (spec §8).
func (v LockValue) Expired(now time.Time) bool {
	return !v.Expiry.After(now)
}

// Parse splits a raw cell value into a LockValue. Empty or malformed
// cells, and cells with an unparseable instant, are reported via ok=false
// and are treated as unlocked by callers.
func Parse(raw string, c *clock.Clock) (LockValue, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LockValue{}, false
	}
	i := strings.LastIndex(raw, "|")
	if i < 0 {
		return LockValue{}, false
	}
	workerID, stamp := raw[:i], raw[i+1:]
	if workerID == "" {
		return LockValue{}, false
	}
	expiry, ok := c.ParseLongStamp(stamp)
	if !ok {
		return LockValue{}, false
	}
	return LockValue{WorkerID: workerID, Expiry: expiry}, true
}

// WorkerID generates this process's identity: hostname-pid (the
// teacher's Worker pattern), suffixed with a short uuid fragment per
// pool slot when the process runs more than one worker goroutine
// (spec §4.10).
func WorkerID(slot int) string {
	hostname, _ := os.Hostname()
	id := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	if slot > 0 {
		id = fmt.Sprintf("%s-%s", id, uuid.New().String()[:8])
	}
	return id
}

// Manager is the Row Lock Manager. It is parameterized over the Sheet
// Gateway and the tab/column layout of the Integrated Worker tab.
type Manager struct {
	gw          *sheetsgw.Gateway
	clock       *clock.Clock
	tab         string
	lockColumn  string
	workerID    string
}

// New builds a Manager. tab and lockColumn identify the Integrated
// Worker tab and the A1 column letter of its lockValue field (e.g. "J").
func New(gw *sheetsgw.Gateway, c *clock.Clock, tab, lockColumn, workerID string) *Manager {
	return &Manager{gw: gw, clock: c, tab: tab, lockColumn: lockColumn, workerID: workerID}
}

func (m *Manager) cellA1(rowIndex int) string {
	return fmt.Sprintf("%s%d", m.lockColumn, rowIndex)
}

// Claim attempts to acquire the lock on the given sheet row for ttl,
// via the mandatory write-then-read verification (spec §4.4 steps 1-4).
// It returns true only if the post-write read shows this worker as
// owner.
func (m *Manager) Claim(ctx context.Context, rowIndex int, currentLockValue string, ttl time.Duration) (bool, error) {
	if existing, ok := Parse(currentLockValue, m.clock); ok && !existing.Expired(m.clock.Now()) && existing.WorkerID != m.workerID {
		metrics.LockClaimsTotal.WithLabelValues("foreign_owner").Inc()
		return false, nil
	}

	want := LockValue{WorkerID: m.workerID, Expiry: m.clock.Now().Add(ttl)}
	wantStr := want.Format(m.clock)

	cell := m.cellA1(rowIndex)
	if err := m.gw.WriteCell(ctx, m.tab, cell, wantStr); err != nil {
		return false, fmt.Errorf("claim row %d: write: %w", rowIndex, err)
	}

	records, err := m.gw.ReadRange(ctx, m.tab, []string{"lockValue"})
	if err != nil {
		return false, fmt.Errorf("claim row %d: verify read: %w", rowIndex, err)
	}
	// rowIndex is 1-based and includes the header row; data rows start
	// at sheet row 2, so the records slice index is rowIndex-2.
	dataIdx := rowIndex - 2
	if dataIdx < 0 || dataIdx >= len(records) {
		metrics.LockClaimsTotal.WithLabelValues("verify_out_of_range").Inc()
		return false, fmt.Errorf("claim row %d: verify read: row out of range", rowIndex)
	}

	won := records[dataIdx]["lockValue"] == wantStr
	if won {
		metrics.LockClaimsTotal.WithLabelValues("claimed").Inc()
	} else {
		metrics.LockClaimsTotal.WithLabelValues("lost_race").Inc()
	}
	return won, nil
}

// Release clears the lock. A failure here is not fatal to the caller —
// the lock will expire on TTL regardless (spec §4.4).
func (m *Manager) Release(ctx context.Context, rowIndex int) error {
	return m.gw.WriteCell(ctx, m.tab, m.cellA1(rowIndex), "")
}

// ReleaseCell returns the CellWrite that clears this row's lock, for
// batching into a single commit with the Result Writer (spec §4.10's
// "MAY be a single batched write").
func (m *Manager) ReleaseCell(rowIndex int) sheetsgw.CellWrite {
	return sheetsgw.CellWrite{CellA1: m.cellA1(rowIndex), Value: ""}
}
