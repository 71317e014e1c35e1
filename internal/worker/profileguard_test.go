package worker

import "testing"

func TestProfileGuardExclusion(t *testing.T) {
	g := newProfileGuard()

	if !g.acquire("profile-1") {
		t.Fatal("expected first acquire to succeed")
	}
	if g.acquire("profile-1") {
		t.Fatal("expected second acquire of the same profile to fail while held")
	}
	if !g.acquire("profile-2") {
		t.Fatal("expected acquire of a distinct profile to succeed")
	}

	g.release("profile-1")
	if !g.acquire("profile-1") {
		t.Fatal("expected acquire to succeed again after release")
	}
}
