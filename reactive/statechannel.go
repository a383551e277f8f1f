package reactive

// StateChannel is a State that also exposes Set/SetStatic as its public
// write surface. It is what Bind operates on.
type StateChannel[T comparable] struct {
	*State[T]
}

// Var constructs a StateChannel holding the given initial value.
func Var[T comparable](initial T) *StateChannel[T] {
	return &StateChannel[T]{State: NewState(func() T { return initial }, false, true)}
}

// VarEqual is Var with a caller-supplied equality function for distinct
// checks made on later Set/SetStatic calls (distinct is off by default for
// a plain write-endpoint Var, but callers composing StateChannel into a
// Binding often want it on).
func VarEqual[T comparable](initial T, distinct bool, equal func(a, b T) bool) *StateChannel[T] {
	return &StateChannel[T]{State: NewStateEqual(func() T { return initial }, distinct, true, equal)}
}
