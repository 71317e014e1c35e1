package authdriver

import (
	"context"
	"time"

	"github.com/pquerna/otp/totp"
)

const totpPeriod = 30 * time.Second

// GenerateTOTP derives a 6-digit code from secret at the given instant.
// If fewer than 5 seconds remain in the current 30s period, it waits for
// the next period and regenerates (spec §4.7, boundary case in §8: a
// code generated with 4s remaining must be regenerated).
func GenerateTOTP(ctx context.Context, secret string, now func() time.Time) (string, error) {
	t := now()
	remaining := totpPeriod - time.Duration(t.Unix()%int64(totpPeriod.Seconds()))*time.Second
	if remaining < 5*time.Second {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(remaining):
		}
		t = now()
	}
	return totp.GenerateCode(secret, t)
}
