package worker

import "sync"

// profileGuard is the in-process set of in-flight profile ids spec
// §4.10 requires when running a bounded concurrent pool: two pool
// workers must never target the same profileId concurrently, since
// each profile maps to exactly one isolated browser data directory.
type profileGuard struct {
	mu    sync.Mutex
	inUse map[string]bool
}

func newProfileGuard() *profileGuard {
	return &profileGuard{inUse: make(map[string]bool)}
}

// acquire reserves profileID for the caller. It returns false if
// another pool worker already holds it.
func (g *profileGuard) acquire(profileID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inUse[profileID] {
		return false
	}
	g.inUse[profileID] = true
	return true
}

func (g *profileGuard) release(profileID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inUse, profileID)
}
