// Command mapcheck is a diagnostic companion to the worker process: it
// reads the Integrated Worker tab and the Profile Mapping tab and
// reports every email that fails to resolve to a profileId, so an
// operator can fix the mapping sheet before a tick silently skips that
// row (worker.SheetRows.ProfileID would otherwise surface this only as
// a per-row warning log buried in the tick output).
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/averyhale/ytprem-scheduler/config"
	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
	"github.com/averyhale/ytprem-scheduler/internal/worker"
)

const (
	integratedWorkerTab = "Integrated Worker"
	profileMappingTab   = "Profile Mapping"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	c, err := clock.New(cfg.TimeZone)
	if err != nil {
		log.Fatalf("clock: %v", err)
	}

	gw, err := sheetsgw.New(ctx, cfg.SheetsCredentialsPath, cfg.GoogleSheetsID, logger)
	if err != nil {
		log.Fatalf("sheets gateway: %v", err)
	}

	rows := worker.NewSheetRows(gw, c, integratedWorkerTab, profileMappingTab)

	taskRows, err := rows.Fetch(ctx)
	if err != nil {
		log.Fatalf("fetch task rows: %v", err)
	}

	unmapped, total := 0, 0
	for _, row := range taskRows {
		if row.Email == "" {
			continue
		}
		total++
		if _, err := rows.ProfileID(ctx, row.Email); err != nil {
			unmapped++
			fmt.Printf("unmapped: %s (row %d)\n", row.Email, row.RowIndex)
		}
	}

	if unmapped == 0 {
		fmt.Println("all emails resolved to a profileId")
		return
	}
	fmt.Printf("%d of %d emails have no profile mapping\n", unmapped, total)
	os.Exit(1)
}
