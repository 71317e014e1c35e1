package sheetsgw

import "errors"

// The Sheet Gateway surfaces exactly one of these for any failed call —
// every transport failure collapses to one of these three buckets so
// callers never have to inspect googleapi.Error themselves.
var (
	ErrTransientExhausted = errors.New("sheetsgw: transient failure, retries exhausted")
	ErrPermissionDenied   = errors.New("sheetsgw: permission denied")
	ErrNotFound           = errors.New("sheetsgw: tab or range not found")
)
