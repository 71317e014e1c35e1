// Package workflow implements the per-attempt Subscription Workflow
// state machine (spec §4.8): Start -> Authenticate ->
// NavigateToMembership -> DetectCurrentState -> ApplyIntent -> Verify ->
// Commit -> Done, with a typed Fail edge out of every state.
package workflow

// State names a node in the attempt state machine.
type State string

const (
	StateStart                 State = "start"
	StateAuthenticate          State = "authenticate"
	StateNavigateToMembership  State = "navigate_to_membership"
	StateDetectCurrentState    State = "detect_current_state"
	StateApplyIntent           State = "apply_intent"
	StateVerify                State = "verify"
	StateCommit                State = "commit"
	StateDone                  State = "done"
	StateFail                  State = "fail"
)

// DetectedState is the stable membership status sampled in
// DETECT_CURRENT_STATE (spec §4.8). Uncertain is never committed
// directly — it always surfaces as a retriable state_uncertain failure.
type DetectedState string

const (
	DetectedActive    DetectedState = "active"
	DetectedPaused    DetectedState = "paused"
	DetectedUncertain DetectedState = "uncertain"
)
