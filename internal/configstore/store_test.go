package configstore

import (
	"testing"

	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

func TestParseSnapshot_Defaults(t *testing.T) {
	snap, err := parseSnapshot(nil)
	if err != nil {
		t.Fatalf("parseSnapshot(nil): %v", err)
	}
	want := defaultSnapshot()
	if snap != want {
		t.Fatalf("parseSnapshot(nil) = %+v, want defaults %+v", snap, want)
	}
}

func TestParseSnapshot_Overrides(t *testing.T) {
	records := []sheetsgw.Record{
		{"key": "pauseAfterMinutes", "value": "45"},
		{"key": "maxRetries", "value": "7"},
		{"key": "notifyWebhook", "value": "true"},
	}

	snap, err := parseSnapshot(records)
	if err != nil {
		t.Fatalf("parseSnapshot: %v", err)
	}
	if snap.PauseAfterMinutes != 45 {
		t.Errorf("PauseAfterMinutes = %d, want 45", snap.PauseAfterMinutes)
	}
	if snap.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7", snap.MaxRetries)
	}
	if !snap.NotifyWebhook {
		t.Errorf("NotifyWebhook = false, want true")
	}
	// Untouched keys keep their defaults.
	if snap.TickSeconds != defaultSnapshot().TickSeconds {
		t.Errorf("TickSeconds = %d, want default %d", snap.TickSeconds, defaultSnapshot().TickSeconds)
	}
}

func TestParseSnapshot_BadValue(t *testing.T) {
	records := []sheetsgw.Record{{"key": "maxRetries", "value": "not-a-number"}}
	if _, err := parseSnapshot(records); err == nil {
		t.Fatal("expected error for non-numeric maxRetries")
	}
}
