// Package bintree provides index arithmetic for a complete binary tree
// stored in a linear id space.
//
// The functions know nothing about how many items are actually stored,
// only how many could be stored in a tree of a given depth. Callers
// must discard any index returned by Begin, End, Parent, or Children
// that is out of range for their population.
package bintree

import "math/bits"

// capMemo[d] is the capacity of a tree of depth d. The number of
// representable depths is small, so the table is computed once.
var capMemo = buildCapMemo()

func buildCapMemo() [bits.UintSize - 2]int {
	var memo [bits.UintSize - 2]int

	s := 1
	for d := range memo {
		s <<= 1
		memo[d] = s - 1
	}

	return memo
}

// Capacity returns the maximum number of items a tree of the given
// depth can hold, which is 2^(depth+1) - 1.
func Capacity(depth int) int {
	return capMemo[depth]
}

// Depth returns the depth of the item at index, the smallest d with
// index < Capacity(d).
func Depth(index int) int {
	d := 0
	for Capacity(d) <= index {
		d++
	}

	return d
}

// Begin returns the first index at the given depth.
func Begin(depth int) int {
	if depth == 0 {
		return 0
	}

	return Capacity(depth - 1)
}

// End returns one past the last index at the given depth.
func End(depth int) int {
	return Capacity(depth)
}

// Parent returns the parent index of child. It is only defined for
// child > 0.
func Parent(child int) int {
	return (child - 1) / 2
}

// Children returns the two child indices of parent.
func Children(parent int) (int, int) {
	left := 2*parent + 1
	return left, left + 1
}
