package reactive

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

// previousFrame is one link of a State's previous-function stack: the
// function that was current before a Replace installed a new one, plus a
// link to the function before that.
type previousFrame[T any] struct {
	fn    func() T
	older *previousFrame[T]
}

// recursionBox is what a State installs into its goroutine-keyed recursion
// slot for the duration of one evaluation. A nil frame, while the box is
// still present, means "currently evaluating this State with no older
// function left to fall back on" -- the RecursionExhausted case.
type recursionBox[T any] struct {
	frame *previousFrame[T]
}

// State is a derived value defined by a zero-argument expression over other
// Observables. It recomputes and fires automatically whenever any Observable
// it reads fires, and it exposes the Observable surface itself so other
// States can depend on it in turn.
type State[T comparable] struct {
	Observable[T]

	writeMu sync.Mutex // serializes Replace/Set/SetStatic on this node

	mu           sync.RWMutex
	fn           func() T
	cached       T
	hasCached    bool
	deps         mapset.Set[dependency]
	depHandles   map[dependency]monitorHandle
	prevStack    *previousFrame[T]
	distinct     bool
	cacheEnabled bool
	equal        func(a, b T) bool
	label        string

	recurMu   sync.Mutex
	recurSlot map[int64]*recursionBox[T]
}

// NewState constructs a State from fn. distinct suppresses fires where the
// recomputed value equals the cached one under Go's built-in equality;
// cacheEnabled controls whether reads between dependency changes return the
// cached value or re-run fn. Computed and Memo are shorter spellings of this
// constructor for the common distinct, cached case.
func NewState[T comparable](fn func() T, distinct bool, cacheEnabled bool) *State[T] {
	return NewStateEqual(fn, distinct, cacheEnabled, func(a, b T) bool { return a == b })
}

// NewStateEqual is NewState with a caller-supplied equality function, for
// callers who need something other than Go's built-in == to decide whether
// distinct should suppress a fire.
func NewStateEqual[T comparable](fn func() T, distinct, cacheEnabled bool, equal func(a, b T) bool) *State[T] {
	s := &State[T]{
		fn:           fn,
		distinct:     distinct,
		cacheEnabled: cacheEnabled,
		equal:        equal,
		deps:         mapset.NewSet[dependency](),
		recurSlot:    map[int64]*recursionBox[T]{},
	}
	s.installRecursion(nil)
	s.evaluate()
	s.uninstallRecursion()
	return s
}

// Computed is NewState with distinct and caching both enabled, the common
// case for a derived value consumers just want to Get().
func Computed[T comparable](fn func() T) *State[T] {
	return NewState(fn, true, true)
}

// Memo is an alias for Computed, a common spelling for a cached derived
// value.
func Memo[T comparable](fn func() T) *State[T] {
	return Computed(fn)
}

// Label sets a human-readable name used by diagnostics and by the inspector
// tool's rendered graph; it has no effect on evaluation.
func (s *State[T]) Label(name string) *State[T] {
	s.mu.Lock()
	s.label = name
	s.mu.Unlock()
	return s
}

// NodeID returns a stable hash of this State's label, for use as a graph
// node key by diagnostics/inspection tooling. Unlabeled States hash the
// empty string.
func (s *State[T]) NodeID() uint64 {
	s.mu.RLock()
	label := s.label
	s.mu.RUnlock()
	return xxhash.Sum64String(label)
}

// Name returns the label previously set via Label, or the empty string.
func (s *State[T]) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.label
}

// Get returns the current value, evaluating the expression if necessary.
func (s *State[T]) Get() T {
	return s.read(true)
}

// Value is an alias for Get, matching the spec's external interface naming.
func (s *State[T]) Value() T {
	return s.Get()
}

// Observing returns the Observables this State currently depends on, as of
// its most recent evaluation.
func (s *State[T]) Observing() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]any, 0, s.deps.Cardinality())
	for d := range s.deps.Iter() {
		out = append(out, d)
	}
	return out
}

// Replace installs newFn as the current expression, evaluates it immediately,
// and fires if the recomputed value isn't suppressed by distinct. Mutually
// exclusive with other Replace/Set/SetStatic calls on the same node.
func (s *State[T]) Replace(newFn func() T) T {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	pushed := &previousFrame[T]{fn: s.fn, older: s.prevStack}
	s.prevStack = pushed
	s.fn = newFn
	s.mu.Unlock()

	s.installRecursion(pushed)
	defer s.uninstallRecursion()

	return s.evaluate()
}

// Set replaces the expression with fn, exactly like Replace: fn is evaluated
// immediately and kept as the expression, so it runs again on every
// recompute (unlike SetStatic, which keeps a fixed value). It exists as a
// spelling distinct from Replace to match the set/setStatic vocabulary.
func (s *State[T]) Set(fn func() T) T {
	return s.Replace(fn)
}

// SetStatic replaces the expression with a constant thunk returning v. Since
// the thunk reads nothing, dependency capture and previous-function-stack
// retention are both cleared as an ordinary consequence of evaluate, with no
// special-casing needed.
func (s *State[T]) SetStatic(v T) T {
	return s.Replace(func() T { return v })
}

// Dispose detaches this State's monitor from every current dependency, then
// clears its own listeners. Infallible and idempotent.
func (s *State[T]) Dispose() {
	s.mu.Lock()
	if s.deps != nil {
		for d := range s.deps.Iter() {
			if h, ok := s.depHandles[d]; ok {
				d.unmonitor(h)
			}
		}
	}
	s.deps = mapset.NewSet[dependency]()
	s.depHandles = nil
	s.mu.Unlock()
	s.Observable.Dispose()
}

// read is the shared implementation behind Get/Value and the monitor's
// uncached recompute.
func (s *State[T]) read(allowCache bool) T {
	globalDepContext.reference(s)

	if v, wasSelfRead, err := s.popRecursion(); wasSelfRead {
		if err != nil {
			panic(err)
		}
		return v
	}

	s.mu.RLock()
	top := s.prevStack
	cacheOn := s.cacheEnabled
	cachedVal := s.cached
	hasCached := s.hasCached
	s.mu.RUnlock()

	s.installRecursion(top)
	defer s.uninstallRecursion()

	if allowCache && cacheOn && hasCached {
		return cachedVal
	}
	return s.evaluate()
}

// evaluate runs fn, capturing dependency reads, diffing them against the
// previously-attached monitors, updating the cached value, and firing if
// appropriate. It is shared by read's uncached path and by Replace, which is
// what lets a plain dependency-triggered recompute narrow or widen the
// dependency set exactly like a Replace would.
func (s *State[T]) evaluate() T {
	s.mu.RLock()
	fn := s.fn
	s.mu.RUnlock()

	cs := pushDependencyContext()
	popped := false
	pop := func() *captureSet {
		if popped {
			return nil
		}
		popped = true
		return popDependencyContext(cs)
	}
	defer pop()

	v := fn()
	captured := pop()

	self := dependency(s)
	selfRef := captured.contains(self)
	newDeps := captured.withoutSelf(self)

	s.mu.Lock()
	if !selfRef {
		s.prevStack = nil
	}
	s.rewireDepsLocked(newDeps)
	fire := s.applyValueLocked(v)
	s.mu.Unlock()

	// The expression is done, so this goroutine's recursion slot is removed
	// before firing: a downstream listener reading this State must get the
	// new cached value, not be treated as a self-reference.
	s.uninstallRecursion()

	if fire {
		if err := s.Observable.Fire(v); err != nil {
			logFireError(err)
		}
	}
	return v
}

// rewireDepsLocked must be called with s.mu held for writing.
func (s *State[T]) rewireDepsLocked(newDeps mapset.Set[dependency]) {
	if s.deps == nil {
		s.deps = mapset.NewSet[dependency]()
	}
	removed := s.deps.Difference(newDeps)
	added := newDeps.Difference(s.deps)

	for d := range removed.Iter() {
		if h, ok := s.depHandles[d]; ok {
			d.unmonitor(h)
			delete(s.depHandles, d)
		}
	}
	for d := range added.Iter() {
		if s.depHandles == nil {
			s.depHandles = map[dependency]monitorHandle{}
		}
		s.depHandles[d] = d.monitor(func() { s.read(false) })
	}
	s.deps = newDeps
}

// applyValueLocked must be called with s.mu held for writing. It returns
// whether the new value should be fired downstream.
func (s *State[T]) applyValueLocked(v T) bool {
	suppress := s.distinct && s.hasCached && s.equal(s.cached, v)
	s.cached = v
	s.hasCached = true
	return !suppress
}

func (s *State[T]) installRecursion(frame *previousFrame[T]) {
	gid := goroutineID()
	s.recurMu.Lock()
	s.recurSlot[gid] = &recursionBox[T]{frame: frame}
	s.recurMu.Unlock()
}

func (s *State[T]) uninstallRecursion() {
	gid := goroutineID()
	s.recurMu.Lock()
	delete(s.recurSlot, gid)
	s.recurMu.Unlock()
}

// popRecursion reports, via wasSelfRead, whether this call is a self-
// reference read ("this" read from within this State's own evaluation). If
// so, err is ErrRecursionExhausted when there's no older function left, or
// nil with v holding the result of evaluating the older function.
func (s *State[T]) popRecursion() (v T, wasSelfRead bool, err error) {
	gid := goroutineID()
	s.recurMu.Lock()
	box, present := s.recurSlot[gid]
	if !present {
		s.recurMu.Unlock()
		return v, false, nil
	}
	frame := box.frame
	if frame == nil {
		s.recurMu.Unlock()
		return v, true, ErrRecursionExhausted
	}
	box.frame = frame.older
	s.recurMu.Unlock()

	return frame.fn(), true, nil
}
