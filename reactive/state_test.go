package reactive

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCore(t *testing.T) {
	/*
	   a  b
	   | /
	   c
	*/
	t.Run("two vars feeding one computed", func(t *testing.T) {
		a := Var(7)
		b := Var(1)
		callCount := 0

		c := Computed(func() int {
			callCount++
			return a.Get() * b.Get()
		})

		assert.Equal(t, 7, c.Get())

		a.SetStatic(2)
		assert.Equal(t, 2, c.Get())

		b.SetStatic(3)
		assert.Equal(t, 6, c.Get())

		assert.Equal(t, 3, callCount)
		c.Get()
		assert.Equal(t, 3, callCount) // cached, no recompute on a plain read
	})

	/*
	   a  b
	   | /
	   c
	   |
	   d
	*/
	t.Run("dependent computed chain", func(t *testing.T) {
		a := Var(7)
		b := Var(1)

		callCount1 := 0
		c := Computed(func() int {
			callCount1++
			return a.Get() * b.Get()
		})

		callCount2 := 0
		d := Computed(func() int {
			callCount2++
			return c.Get() + 1
		})

		assert.Equal(t, 8, d.Get())
		assert.Equal(t, 1, callCount1)
		assert.Equal(t, 1, callCount2)

		a.SetStatic(3)
		assert.Equal(t, 4, d.Get())
		assert.Equal(t, 2, callCount1)
		assert.Equal(t, 2, callCount2)
	})

	/*
	   a
	   |
	   c (distinct)
	*/
	t.Run("distinct suppresses the downstream fire on an unchanged input", func(t *testing.T) {
		callCount := 0
		a := Var(7)
		c := Computed(func() int {
			callCount++
			return a.Get() + 10
		})
		fires := 0
		c.Attach(func(int) { fires++ })

		c.Get()
		c.Get()
		assert.Equal(t, 1, callCount)

		a.SetStatic(7)
		assert.Equal(t, 2, callCount) // a plain Var is not distinct, so c recomputes
		assert.Equal(t, 0, fires)     // c's own distinct check suppresses its fire
	})

	/*
	   s
	   |
	   a
	   | \
	   b  c
	    \ |
	      d
	*/
	t.Run("diamond dependency graph recomputes the join once per changed branch", func(t *testing.T) {
		s := Var(1)
		a := Computed(func() int { return s.Get() })
		b := Computed(func() int { return a.Get() * 2 })
		c := Computed(func() int { return a.Get() * 3 })
		callCount := 0
		d := Computed(func() int {
			callCount++
			return b.Get() + c.Get()
		})

		assert.Equal(t, 5, d.Get())
		assert.Equal(t, 1, callCount)
		s.SetStatic(2)
		assert.Equal(t, 10, d.Get())
		// Eager depth-first push: d recomputes when b fires and again when c fires.
		assert.Equal(t, 3, callCount)
	})

	/*
	   a     b
	   |     |
	   cA   cB
	   |   / (dynamically depends on cB only when cA is zero)
	   cAB
	*/
	t.Run("conditional dependency narrows and widens across plain recomputes", func(t *testing.T) {
		a := Var(1)
		b := Var(2)
		var callCountA, callCountB, callCountAB int

		cA := Computed(func() int {
			callCountA++
			return a.Get()
		})
		cB := Computed(func() int {
			callCountB++
			return b.Get()
		})
		cAB := Computed(func() int {
			callCountAB++
			if av := cA.Get(); av != 0 {
				return av
			}
			return cB.Get()
		})

		assert.Equal(t, 1, cAB.Get())
		a.SetStatic(2)
		b.SetStatic(3)
		assert.Equal(t, 2, cAB.Get())

		assert.Equal(t, 2, callCountA)
		assert.Equal(t, 2, callCountAB)
		assert.Equal(t, 2, callCountB) // cB evaluated at construction and on b's write; cAB does not read it yet

		a.SetStatic(0)
		assert.Equal(t, 3, cAB.Get())
		assert.Equal(t, 3, callCountA)
		assert.Equal(t, 3, callCountAB)
		assert.Equal(t, 2, callCountB) // cAB widened to depend on cB, reading its cached value

		b.SetStatic(4)
		assert.Equal(t, 4, cAB.Get())
		assert.Equal(t, 3, callCountA)
		assert.Equal(t, 4, callCountAB)
		assert.Equal(t, 3, callCountB)
	})

	t.Run("a write performed from within a computed's own expression is observed downstream", func(t *testing.T) {
		s := Var(1)
		a := Computed(func() bool {
			s.SetStatic(2)
			return true
		})
		l := Computed(func() int {
			return s.Get() + 100
		})

		a.Get()
		assert.Equal(t, 102, l.Get())
	})
}

func TestStateSelfReference(t *testing.T) {
	t.Run("replace chains to the previous function as an accumulator", func(t *testing.T) {
		s := NewState(func() int { return 0 }, false, true)
		s.Label("counter")

		inc := func() int { return s.Get() + 1 }

		assert.Equal(t, 1, s.Replace(inc))
		assert.Equal(t, 2, s.Replace(inc))
		assert.Equal(t, 3, s.Replace(inc))
	})

	t.Run("reading self twice within one replace exhausts the previous-function stack", func(t *testing.T) {
		s := NewState(func() int { return 0 }, false, true)

		var recovered error
		func() {
			defer func() {
				if r := recover(); r != nil {
					recovered = r.(error)
				}
			}()
			s.Replace(func() int { return s.Get() + s.Get() })
		}()

		assert.ErrorIs(t, recovered, ErrRecursionExhausted)
	})
}

func TestStateGoroutineIsolation(t *testing.T) {
	t.Run("a concurrent read on another goroutine is not captured as a dependency", func(t *testing.T) {
		a := Var(1)
		other := Var(99)

		ready := make(chan struct{})
		release := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			other.Get()
			close(release)
		}()

		c := NewState(func() int {
			v := a.Get()
			close(ready)
			<-release
			return v
		}, false, true)
		wg.Wait()

		assert.Equal(t, 1, c.Get())
		deps := c.Observing()
		assert.Len(t, deps, 1)
		assert.Contains(t, deps, dependency(a.State))
		assert.NotContains(t, deps, dependency(other.State))
	})
}
