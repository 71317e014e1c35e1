// Package configstore loads the Config tab once per tick into a
// value-typed, immutable snapshot (spec §4.3). Snapshots never mutate
// mid-tick; every component receives the same value by copy.
package configstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

const ConfigTab = "Config"

// Snapshot is the per-tick runtime configuration (spec §4.3's table), plus
// the concrete notification channels this implementation wires.
type Snapshot struct {
	PauseAfterMinutes   int `validate:"min=0"`
	ResumeBeforeMinutes int `validate:"min=0"`
	TickSeconds         int `validate:"min=1"`
	MaxRetries          int `validate:"min=1"`
	LockTTLSeconds      int `validate:"min=1"`
	PaymentRetryMaxHours int `validate:"min=1"`

	NotifyEmail     bool
	NotifyWebhook   bool
	NotifyConsole   bool
	NotifyDigest    bool
	NotifyPagerDuty bool
}

// Store loads Snapshots from the Config tab via the Sheet Gateway, caching
// the last good value. A failed reload never blocks the tick — it logs a
// warning and keeps serving the previous snapshot (spec §4.3).
type Store struct {
	gw       *sheetsgw.Gateway
	logger   *slog.Logger
	validate *validator.Validate

	last Snapshot
	have bool
}

func New(gw *sheetsgw.Gateway, logger *slog.Logger) *Store {
	return &Store{
		gw:       gw,
		logger:   logger.With("component", "configstore"),
		validate: validator.New(),
		last:     defaultSnapshot(),
	}
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		PauseAfterMinutes:    30,
		ResumeBeforeMinutes:  60,
		TickSeconds:          30,
		MaxRetries:           5,
		LockTTLSeconds:       300,
		PaymentRetryMaxHours: 24,
		NotifyConsole:        true,
	}
}

// Load reads the Config tab and returns the new snapshot, or the last good
// one if the read/parse/validate fails.
func (s *Store) Load(ctx context.Context) Snapshot {
	records, err := s.gw.ReadRange(ctx, ConfigTab, nil)
	if err != nil {
		s.logger.Warn("config reload failed, reusing last good snapshot", "error", err)
		s.have = true
		return s.last
	}

	snap, err := parseSnapshot(records)
	if err != nil {
		s.logger.Warn("config parse failed, reusing last good snapshot", "error", err)
		s.have = true
		return s.last
	}

	if err := s.validate.Struct(&snap); err != nil {
		s.logger.Warn("config validation failed, reusing last good snapshot", "error", err)
		s.have = true
		return s.last
	}

	s.last = snap
	s.have = true
	return snap
}

func parseSnapshot(records []sheetsgw.Record) (Snapshot, error) {
	kv := make(map[string]string, len(records))
	for _, r := range records {
		key := strings.TrimSpace(r["key"])
		if key == "" {
			continue
		}
		kv[key] = strings.TrimSpace(r["value"])
	}

	snap := defaultSnapshot()

	intField := func(key string, dst *int) error {
		v, ok := kv[key]
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		*dst = n
		return nil
	}
	boolField := func(key string, dst *bool) error {
		v, ok := kv[key]
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		*dst = b
		return nil
	}

	for _, step := range []func() error{
		func() error { return intField("pauseAfterMinutes", &snap.PauseAfterMinutes) },
		func() error { return intField("resumeBeforeMinutes", &snap.ResumeBeforeMinutes) },
		func() error { return intField("tickSeconds", &snap.TickSeconds) },
		func() error { return intField("maxRetries", &snap.MaxRetries) },
		func() error { return intField("lockTtlSeconds", &snap.LockTTLSeconds) },
		func() error { return intField("paymentRetryMaxHours", &snap.PaymentRetryMaxHours) },
		func() error { return boolField("notifyEmail", &snap.NotifyEmail) },
		func() error { return boolField("notifyWebhook", &snap.NotifyWebhook) },
		func() error { return boolField("notifyConsole", &snap.NotifyConsole) },
		func() error { return boolField("notifyDigest", &snap.NotifyDigest) },
		func() error { return boolField("notifyPagerDuty", &snap.NotifyPagerDuty) },
	} {
		if err := step(); err != nil {
			return Snapshot{}, err
		}
	}

	return snap, nil
}
