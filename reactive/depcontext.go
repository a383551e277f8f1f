package reactive

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// monitorHandle is the opaque value a dependency returns from monitor and
// expects back, unmodified, in unmonitor.
type monitorHandle any

// dependency is implemented by every Observable[T] regardless of T, letting
// a State hold a heterogeneous set of dependencies (Observables of differing
// value types) in one mapset.Set. It is the non-generic face of "On attach
// ignoring the value" used internally for wiring a State's monitor to each
// of its dependencies.
type dependency interface {
	monitor(body func()) monitorHandle
	unmonitor(h monitorHandle)
}

func (o *Observable[T]) monitor(body func()) monitorHandle {
	return o.On(body)
}

func (o *Observable[T]) unmonitor(h monitorHandle) {
	if l, ok := h.(*Listener[T]); ok {
		o.Detach(l)
	}
}

// captureSet is the set of dependencies read during one push/pop cycle of
// the dependency context, built on golang-set for the dependency/observer
// set.
type captureSet struct {
	set mapset.Set[dependency]
}

func newCaptureSet() *captureSet {
	return &captureSet{set: mapset.NewSet[dependency]()}
}

func (c *captureSet) add(d dependency) {
	c.set.Add(d)
}

func (c *captureSet) contains(d dependency) bool {
	return c.set.Contains(d)
}

// withoutSelf returns the captured set minus self, for installing as a
// State's new dependency set (a State never depends on itself).
func (c *captureSet) withoutSelf(self dependency) mapset.Set[dependency] {
	clone := c.set.Clone()
	clone.Remove(self)
	return clone
}

// dependencyContextRegistry is the goroutine-scoped stack of capture sets
// used for implicit dependency capture during expression evaluation. Go has
// no native thread-local storage, so the registry is keyed by a goroutine id
// extracted from the runtime's own stack trace format -- a well-worn, if
// informal, substitute.
type dependencyContextRegistry struct {
	mu     sync.Mutex
	stacks map[int64][]*captureSet
}

var globalDepContext = &dependencyContextRegistry{
	stacks: map[int64][]*captureSet{},
}

func pushDependencyContext() *captureSet {
	cs := newCaptureSet()
	gid := goroutineID()
	globalDepContext.mu.Lock()
	globalDepContext.stacks[gid] = append(globalDepContext.stacks[gid], cs)
	globalDepContext.mu.Unlock()
	return cs
}

func popDependencyContext(expected *captureSet) *captureSet {
	gid := goroutineID()
	globalDepContext.mu.Lock()
	defer globalDepContext.mu.Unlock()
	stack := globalDepContext.stacks[gid]
	if len(stack) == 0 {
		panic(ErrNoContext)
	}
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(globalDepContext.stacks, gid)
	} else {
		globalDepContext.stacks[gid] = stack
	}
	if top != expected {
		panic(ErrNoContext)
	}
	return top
}

func (r *dependencyContextRegistry) reference(d dependency) {
	gid := goroutineID()
	r.mu.Lock()
	stack := r.stacks[gid]
	var top *captureSet
	if len(stack) > 0 {
		top = stack[len(stack)-1]
	}
	r.mu.Unlock()
	if top != nil {
		top.add(d)
	}
}

// goroutineID parses "goroutine NNN [running]:" off the head of a stack
// trace captured for the calling goroutine only. It is not meant to be
// fast; it is meant to give genuinely goroutine-local scoping to the
// dependency context and the per-State recursion slot without threading an
// explicit context argument through every read.
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
