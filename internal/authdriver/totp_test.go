package authdriver

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

// a valid base32 TOTP secret for testing.
const testSecret = "JBSWY3DPEHPK3PXP"

func TestGenerateTOTP_MatchesLibraryForStablePeriod(t *testing.T) {
	fixed := time.Date(2026, 7, 29, 10, 0, 10, 0, time.UTC) // 10s into the period, well clear of the boundary
	code, err := GenerateTOTP(context.Background(), testSecret, func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("GenerateTOTP: %v", err)
	}
	want, err := totp.GenerateCode(testSecret, fixed)
	if err != nil {
		t.Fatalf("totp.GenerateCode: %v", err)
	}
	if code != want {
		t.Errorf("GenerateTOTP = %q, want %q", code, want)
	}
}

func TestGenerateTOTP_WaitsOutNearBoundary(t *testing.T) {
	// 26s into a 30s period -> 4s remaining, below the 5s threshold.
	near := time.Date(2026, 7, 29, 10, 0, 26, 0, time.UTC)
	after := near.Add(4 * time.Second)

	calls := 0
	clockFn := func() time.Time {
		calls++
		if calls == 1 {
			return near
		}
		return after
	}

	start := time.Now()
	code, err := GenerateTOTP(context.Background(), testSecret, clockFn)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("GenerateTOTP: %v", err)
	}
	if elapsed < 3*time.Second {
		t.Fatalf("expected GenerateTOTP to wait out the boundary, only waited %v", elapsed)
	}
	want, _ := totp.GenerateCode(testSecret, after)
	if code != want {
		t.Errorf("GenerateTOTP = %q, want %q (code for next period)", code, want)
	}
}
