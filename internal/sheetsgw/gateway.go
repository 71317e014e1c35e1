// Package sheetsgw is the Sheet Gateway (spec §4.2): a typed, retrying,
// rate-limited read/write layer over a single Google Sheets spreadsheet.
// It is the only component in the system that talks to the spreadsheet
// transport directly.
package sheetsgw

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Record is one data row keyed by header name, exactly as ReadRange
// returns it.
type Record map[string]string

// CellWrite is one (cell, value) pair for a batched update. Order is
// preserved end to end.
type CellWrite struct {
	CellA1 string
	Value  string
}

// Gateway is the Sheet Gateway.
type Gateway struct {
	svc           *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// New builds a Gateway authenticated with a service-account key file. The
// core never creates, rotates, or validates the key itself (spec §6) — it
// only turns the path into a token source.
func New(ctx context.Context, credentialsPath, spreadsheetID string, logger *slog.Logger) (*Gateway, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("build sheets service: %w", err)
	}
	return &Gateway{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		// Sheets API default quota is 300 read + 300 write requests per
		// minute per project; stay comfortably under that ceiling.
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 4), // 240 calls/min, burst 4
		logger:  logger.With("component", "sheetsgw"),
	}, nil
}

// NewWithLimiter is the same as New but allows overriding the default rate
// limit, for example with a limiter that never blocks.
func NewWithLimiter(ctx context.Context, credentialsPath, spreadsheetID string, logger *slog.Logger, limiter *rate.Limiter) (*Gateway, error) {
	gw, err := New(ctx, credentialsPath, spreadsheetID, logger)
	if err != nil {
		return nil, err
	}
	gw.limiter = limiter
	return gw, nil
}

func (g *Gateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// ReadRange returns every data row in tab restricted to the named columns,
// keyed by header name. Blank trailing rows are trimmed.
func (g *Gateway) ReadRange(ctx context.Context, tab string, columns []string) ([]Record, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	var values [][]any
	err := withRetry(ctx, minAttempts, func(attemptCtx context.Context) error {
		resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, tab).Context(attemptCtx).Do()
		if err != nil {
			return err
		}
		values = resp.Values
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = fmt.Sprintf("%v", v)
	}

	wantAll := len(columns) == 0
	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}

	data := values[1:]
	for len(data) > 0 && isBlankRow(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	records := make([]Record, 0, len(data))
	for _, row := range data {
		rec := make(Record, len(header))
		for i, col := range header {
			if !wantAll && !want[col] {
				continue
			}
			if i < len(row) {
				rec[col] = fmt.Sprintf("%v", row[i])
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlankRow(row []any) bool {
	for _, v := range row {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return false
		}
		if _, ok := v.(string); !ok && v != nil {
			return false
		}
	}
	return true
}

// WriteCell writes a single cell value.
func (g *Gateway) WriteCell(ctx context.Context, tab, cellA1, value string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	rangeStr := fmt.Sprintf("%s!%s", tab, cellA1)
	vr := &sheets.ValueRange{Values: [][]any{{value}}}

	return withRetry(ctx, minAttempts, func(attemptCtx context.Context) error {
		_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rangeStr, vr).
			ValueInputOption("RAW").Context(attemptCtx).Do()
		return err
	})
}

// WriteBatch performs one round-trip batched update, preserving the order
// of writes. The Row Lock Manager and Result Writer are the two callers
// that must serialize writes to the same row — the gateway itself does
// not serialize across calls.
func (g *Gateway) WriteBatch(ctx context.Context, tab string, writes []CellWrite) error {
	if len(writes) == 0 {
		return nil
	}
	if err := g.wait(ctx); err != nil {
		return err
	}

	data := make([]*sheets.ValueRange, len(writes))
	for i, w := range writes {
		data[i] = &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s", tab, w.CellA1),
			Values: [][]any{{w.Value}},
		}
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}

	return withRetry(ctx, minAttempts, func(attemptCtx context.Context) error {
		_, err := g.svc.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, req).Context(attemptCtx).Do()
		return err
	})
}

// ListTabs returns every sheet (tab) name in the spreadsheet.
func (g *Gateway) ListTabs(ctx context.Context) ([]string, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	var names []string
	err := withRetry(ctx, minAttempts, func(attemptCtx context.Context) error {
		resp, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Context(attemptCtx).Do()
		if err != nil {
			return err
		}
		names = make([]string, len(resp.Sheets))
		for i, sh := range resp.Sheets {
			names[i] = sh.Properties.Title
		}
		return nil
	})
	return names, err
}

// EnsureTab creates the named tab if it does not already exist.
func (g *Gateway) EnsureTab(ctx context.Context, name string) error {
	tabs, err := g.ListTabs(ctx)
	if err != nil {
		return err
	}
	for _, t := range tabs {
		if t == name {
			return nil
		}
	}

	if err := g.wait(ctx); err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}
	return withRetry(ctx, minAttempts, func(attemptCtx context.Context) error {
		_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(attemptCtx).Do()
		return err
	})
}

// Ping is a cheap readiness probe — it fetches spreadsheet metadata
// without reading any row data. Used by internal/health.
func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, perAttemptCap)
	defer cancel()
	_, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return classify(err)
	}
	return nil
}
