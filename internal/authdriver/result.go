package authdriver

import "github.com/averyhale/ytprem-scheduler/internal/domain"

// HandlerResult is the outcome of a single page handler invocation
// (spec §4.7): a handler either advances the flow, fails terminally, or
// fails retriably with a classified reason.
type HandlerResult struct {
	Advanced         bool
	TerminalFailure  *domain.FailureReason
	RetriableFailure *domain.FailureReason
}

func advanced() HandlerResult { return HandlerResult{Advanced: true} }

func terminal(reason domain.FailureReason) HandlerResult {
	return HandlerResult{TerminalFailure: &reason}
}

func retriable(reason domain.FailureReason) HandlerResult {
	return HandlerResult{RetriableFailure: &reason}
}

// Done reports whether the result ends the dispatch loop (either kind
// of failure set).
func (r HandlerResult) Done() bool {
	return r.TerminalFailure != nil || r.RetriableFailure != nil
}
