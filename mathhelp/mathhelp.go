package mathhelp

import (
	"math"

	"golang.org/x/exp/constraints"
)

func Pow2(n uint) uint {
	return 1 << n
}

// FloorTo floors v to the nearest multiple of size counted from offset.
// Used to pin grid cells to an absolute lattice.
func FloorTo(v, size, offset float64) float64 {
	return math.Floor((v-offset)/size)*size + offset
}

// Pair is a homogeneous (x, y) parameter pair.
type Pair[T constraints.Integer | constraints.Float] [2]T

func (p Pair[T]) X() T { return p[0] }
func (p Pair[T]) Y() T { return p[1] }

// Square returns the pair (v, v).
func Square[T constraints.Integer | constraints.Float](v T) Pair[T] {
	return Pair[T]{v, v}
}

func BetweenInc[T constraints.Ordered](f, p, q T) bool {
	if p <= q {
		return p <= f && f <= q
	}
	return q <= f && f <= p
}
