package reactive

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinding(t *testing.T) {
	t.Run("bindLeftToRight syncs right from left at creation", func(t *testing.T) {
		celsius := Var(100)
		fahrenheit := Var(0)

		toF := func(c int) int { return c*9/5 + 32 }
		toC := func(f int) int { return (f - 32) * 5 / 9 }

		bd := Bind(celsius, fahrenheit, toF, toC, BindLeftToRight)
		defer bd.Dispose()

		assert.Equal(t, 212, fahrenheit.Get())
	})

	t.Run("bindRightToLeft syncs left from right at creation", func(t *testing.T) {
		celsius := Var(0)
		fahrenheit := Var(32)

		toF := func(c int) int { return c*9/5 + 32 }
		toC := func(f int) int { return (f - 32) * 5 / 9 }

		bd := Bind(celsius, fahrenheit, toF, toC, BindRightToLeft)
		defer bd.Dispose()

		assert.Equal(t, 0, celsius.Get())
	})

	t.Run("a write to either side propagates to the other exactly once", func(t *testing.T) {
		left := Var(1)
		right := Var("1")

		toRight := func(n int) string { return strconv.Itoa(n) }
		toLeft := func(s string) int { n, _ := strconv.Atoi(s); return n }

		bd := Bind(left, right, toRight, toLeft, BindLeftToRight)
		defer bd.Dispose()

		left.SetStatic(5)
		assert.Equal(t, "5", right.Get())

		right.SetStatic("9")
		assert.Equal(t, 9, left.Get())
	})

	t.Run("dispose ends the link in both directions", func(t *testing.T) {
		left := Var(1)
		right := Var(1)

		bd := Bind(left, right, func(n int) int { return n }, func(n int) int { return n }, BindNone)
		bd.Dispose()

		left.SetStatic(42)
		assert.Equal(t, 1, right.Get())

		right.SetStatic(7)
		assert.Equal(t, 42, left.Get())
	})
}
