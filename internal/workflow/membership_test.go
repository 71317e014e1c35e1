package workflow

import "testing"

func TestMembershipSnapshot_Classify(t *testing.T) {
	cases := []struct {
		name string
		snap MembershipSnapshot
		want DetectedState
	}{
		{"pause only", MembershipSnapshot{HasPauseButton: true}, DetectedActive},
		{"manage plus billing text", MembershipSnapshot{HasManageButton: true, BillingDateText: "Dec 25, 2025"}, DetectedActive},
		{"resume only", MembershipSnapshot{HasResumeButton: true}, DetectedPaused},
		{"paused text plus resume", MembershipSnapshot{HasPausedText: true, HasResumeButton: true}, DetectedPaused},
		{"nothing", MembershipSnapshot{}, DetectedUncertain},
		{"both pause and resume present is ambiguous", MembershipSnapshot{HasPauseButton: true, HasResumeButton: true}, DetectedUncertain},
	}
	for _, c := range cases {
		if got := c.snap.classify(); got != c.want {
			t.Errorf("%s: classify() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestMembershipSnapshot_Equal(t *testing.T) {
	a := MembershipSnapshot{HasPauseButton: true, BillingDateText: "Dec 25, 2025"}
	b := MembershipSnapshot{HasPauseButton: true, BillingDateText: "Dec 25, 2025"}
	c := MembershipSnapshot{HasPauseButton: false, BillingDateText: "Dec 25, 2025"}
	if !a.equal(b) {
		t.Error("identical snapshots must compare equal")
	}
	if a.equal(c) {
		t.Error("differing snapshots must not compare equal")
	}
}

func TestMembershipSnapshot_HasActionButton(t *testing.T) {
	if (MembershipSnapshot{}).hasActionButton() {
		t.Error("empty snapshot must not report an action button")
	}
	if !(MembershipSnapshot{HasManageButton: true}).hasActionButton() {
		t.Error("manage button must count as an action button")
	}
}
