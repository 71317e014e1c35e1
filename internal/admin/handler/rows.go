// Package handler holds the admin HTTP surface's gin handlers: an
// operational escape hatch for stuck rows, layered directly on the Row
// Lock Manager and Sheet Gateway rather than owning any business logic
// of its own — the interactive menu front-end the spec treats as an
// external collaborator (spec §1) would call the same two operations.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/averyhale/ytprem-scheduler/internal/rowlock"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

// RowFinder resolves an email to its current sheet row index and raw
// lockValue cell, the minimum the unlock operation needs.
type RowFinder interface {
	FindRowIndex(ctx context.Context, email string) (rowIndex int, lockValue string, found bool, err error)
}

// RowHandler exposes operator actions against the Integrated Worker
// tab's lock column. It never touches status, retryCount, or
// resultText — those are the Result Writer's columns alone.
type RowHandler struct {
	finder  RowFinder
	lockMgr *rowlock.Manager
}

func NewRowHandler(finder RowFinder, lockMgr *rowlock.Manager) *RowHandler {
	return &RowHandler{finder: finder, lockMgr: lockMgr}
}

type unlockRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Unlock force-clears a row's lockValue cell — the operator-facing
// escape hatch for a row stuck behind a crashed worker's TTL (spec
// §4.4 already self-heals this within lockTtlSeconds; this endpoint is
// for an operator who doesn't want to wait out the TTL).
func (h *RowHandler) Unlock(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest})
		return
	}

	email := strings.TrimSpace(req.Email)
	rowIndex, _, found, err := h.finder.FindRowIndex(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": errRowNotFound})
		return
	}

	if err := h.lockMgr.Release(c.Request.Context(), rowIndex); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unlocked", "rowIndex": rowIndex})
}

// SheetRowFinder is the sheetsgw-backed RowFinder, reading the
// Integrated Worker tab directly rather than through the worker
// package's richer parsed Rows view — the admin surface only ever
// needs the row index and raw lock cell.
type SheetRowFinder struct {
	gw  *sheetsgw.Gateway
	tab string
}

func NewSheetRowFinder(gw *sheetsgw.Gateway, tab string) *SheetRowFinder {
	return &SheetRowFinder{gw: gw, tab: tab}
}

func (f *SheetRowFinder) FindRowIndex(ctx context.Context, email string) (int, string, bool, error) {
	records, err := f.gw.ReadRange(ctx, f.tab, []string{"email", "lockValue"})
	if err != nil {
		return 0, "", false, err
	}
	want := sheetsgw.NormalizeEmail(email)
	for i, rec := range records {
		if sheetsgw.NormalizeEmail(rec["email"]) == want {
			return i + 2, rec["lockValue"], true, nil
		}
	}
	return 0, "", false, nil
}
