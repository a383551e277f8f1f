package reactive

import "sync"

// Invocation is the per-fire control token passed to every listener invoked
// during a single Fire call. A listener can call Stop to short-circuit
// delivery to the listeners that would otherwise run after it, for that fire
// only.
type Invocation struct {
	mu      sync.Mutex
	stopped bool
}

// Stop halts delivery of the current fire to any listener not yet invoked.
func (i *Invocation) Stop() {
	i.mu.Lock()
	i.stopped = true
	i.mu.Unlock()
}

// IsStopped reports whether Stop has been called for this fire.
func (i *Invocation) IsStopped() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stopped
}

// Reset returns the token to the unstopped state, allowing a caller to pool
// and reuse Invocation values across fires instead of allocating one each
// time.
func (i *Invocation) Reset() {
	i.mu.Lock()
	i.stopped = false
	i.mu.Unlock()
}
