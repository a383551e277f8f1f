package reactive

import "sync/atomic"

// BindSet controls which side of a Binding is synchronized immediately upon
// creation.
type BindSet int

const (
	// BindNone performs no initial synchronization; the two sides start out
	// however they already were.
	BindNone BindSet = iota
	// BindLeftToRight copies left's current value into right, converted.
	BindLeftToRight
	// BindRightToLeft copies right's current value into left, converted.
	BindRightToLeft
)

// Binding is a two-way link between two StateChannels, guarded by a shared
// re-entry flag so a write on either side triggers exactly one write on the
// other, never a ping-pong.
type Binding[A, B comparable] struct {
	left  *StateChannel[A]
	right *StateChannel[B]

	leftToRight *Listener[A]
	rightToLeft *Listener[B]

	changing atomic.Bool
}

// Bind establishes a two-way edge between left and right using aToB/bToA to
// convert values across the link, performing the initial sync direction
// indicated by setNow.
func Bind[A, B comparable](left *StateChannel[A], right *StateChannel[B], aToB func(A) B, bToA func(B) A, setNow BindSet) *Binding[A, B] {
	bd := &Binding[A, B]{left: left, right: right}

	switch setNow {
	case BindLeftToRight:
		right.SetStatic(aToB(left.Get()))
	case BindRightToLeft:
		left.SetStatic(bToA(right.Get()))
	}

	bd.leftToRight = left.AttachFunc(func(v A, _ *Invocation) {
		if !bd.changing.CompareAndSwap(false, true) {
			return
		}
		defer bd.changing.Store(false)
		right.SetStatic(aToB(v))
	})
	bd.rightToLeft = right.AttachFunc(func(v B, _ *Invocation) {
		if !bd.changing.CompareAndSwap(false, true) {
			return
		}
		defer bd.changing.Store(false)
		left.SetStatic(bToA(v))
	})

	return bd
}

// Dispose detaches both paired listeners, ending the two-way link.
func (bd *Binding[A, B]) Dispose() {
	bd.left.Detach(bd.leftToRight)
	bd.right.Detach(bd.rightToLeft)
}
