// Package dice provides the dice expression model, its parser and the
// randomness abstraction used by the combat resolver.
package dice

import (
	"math"
	"strconv"
	"strings"
)

// Value is a dice expression: a constant, a single die, or a sum of values.
//
// The set of implementations is closed; isValue is unexported so only this
// package can add variants.
type Value interface {
	// Eval draws fresh randomness from src and returns the rolled magnitude.
	Eval(src Source) int
	// Max returns the theoretical ceiling without drawing randomness.
	Max() int
	// String renders the value in dice notation.
	String() string

	isValue()
}

// Constant is a fixed integer.
type Constant struct {
	N int
}

// Random is a single uniform die over the inclusive range [Low, High].
//
// Invariant: Low <= High.
type Random struct {
	Low  int
	High int
}

// Combined is the sum of its terms, evaluated left to right.
type Combined struct {
	Terms []Value
}

// Zero is the constant 0, used as the "no effect" payload by rules.
var Zero Value = Constant{N: 0}

// D6 is the six-sided die every combat roll uses.
var D6 Value = Random{Low: 1, High: 6}

func (Constant) isValue() {}
func (Random) isValue() {}
func (Combined) isValue() {}

// Eval returns c.N.
func (c Constant) Eval(Source) int { return c.N }

// Max returns c.N.
func (c Constant) Max() int { return c.N }

func (c Constant) String() string { return strconv.Itoa(c.N) }

// Eval draws one value in [Low, High].
//
// Precondition: src must be non-nil.
func (r Random) Eval(src Source) int {
	return src.Intn(r.High-r.Low+1) + r.Low
}

// Max returns r.High.
func (r Random) Max() int { return r.High }

func (r Random) String() string {
	if r.Low == 1 {
		return "d" + strconv.Itoa(r.High)
	}
	return strconv.Itoa(r.Low) + ".." + strconv.Itoa(r.High)
}

// Eval evaluates every term in order and returns the sum, saturating at the
// int range.
func (c Combined) Eval(src Source) int {
	total := 0
	for _, t := range c.Terms {
		total = addSat(total, t.Eval(src))
	}
	return total
}

// Max returns the sum of the terms' maxima, saturating at the int range so
// capacity checks never see a wrapped value.
func (c Combined) Max() int {
	total := 0
	for _, t := range c.Terms {
		total = addSat(total, t.Max())
	}
	return total
}

func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// String collapses runs of identical dice back into NdM form, so that
// Parse("2d6 + 1").String() == "2d6 + 1".
func (c Combined) String() string {
	parts := make([]string, 0, len(c.Terms))
	for i := 0; i < len(c.Terms); {
		r, ok := c.Terms[i].(Random)
		if !ok || r.Low != 1 {
			parts = append(parts, c.Terms[i].String())
			i++
			continue
		}
		n := 1
		for i+n < len(c.Terms) && c.Terms[i+n] == Value(r) {
			n++
		}
		parts = append(parts, strconv.Itoa(n)+"d"+strconv.Itoa(r.High))
		i += n
	}
	return strings.Join(parts, " + ")
}

// Add returns the combination a + b without evaluating either side.
func Add(a, b Value) Value {
	return Combined{Terms: []Value{a, b}}
}

// Evaluate draws a fresh result for v from src.
//
// Precondition: v and src must be non-nil.
// Postcondition: two calls on the same v are independent draws.
func Evaluate(v Value, src Source) int {
	return v.Eval(src)
}

// MaxValue returns the largest result v can produce. It never draws.
func MaxValue(v Value) int {
	return v.Max()
}

// IsZero reports whether v is the literal constant 0.
func IsZero(v Value) bool {
	c, ok := v.(Constant)
	return ok && c.N == 0
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
