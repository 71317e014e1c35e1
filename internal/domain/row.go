// Package domain holds the types shared across the scheduled worker core —
// the task row read from the spreadsheet, its lifecycle status, and the
// classified outcomes a workflow attempt can produce.
package domain

import (
	"errors"
	"time"
)

var (
	ErrRowNotFound      = errors.New("row not found")
	ErrProfileNotMapped = errors.New("no profile mapping for email")
)

// Status is the intent/ownership signal stored in a row's status cell.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEmpty  Status = "empty"
)

// Intent is fixed per attempt by the queue a row was drawn from.
type Intent string

const (
	IntentPause  Intent = "pause"
	IntentResume Intent = "resume"
)

// TaskRow is one spreadsheet row in the integrated worker tab — one
// account's subscription lifecycle state.
type TaskRow struct {
	RowIndex int // 1-based sheet row, used to address cells for writes

	Email         string
	Password      string
	RecoveryEmail string
	TOTPSecret    string

	Status Status

	NextBillingDate     string // raw cell, parsed via clock.ParseDate
	ScheduledTimeOfDay  string // raw cell, parsed via clock.ParseTimeOfDay
	ScheduledInstant    time.Time
	ScheduledInstantSet bool

	ResultText string
	RetryCount int

	LockValue string

	PaymentPendingFirstSeenAt    time.Time
	PaymentPendingFirstSeenIsSet bool
	PaymentPendingNextRetryAt    time.Time
	PaymentPendingNextRetryIsSet bool

	ProfileID string
}

// ProfileMapping is one row of the profile mapping tab.
type ProfileMapping struct {
	ProfileNumber int
	ProfileID     string
	Group         string
	Email         string
}
