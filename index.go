package bmt

import (
	"fmt"
	"math/bits"
)

// Heap index arithmetic. Nodes live in one flat slice in binary-heap order:
// the root is at index 0 and the children of node i are at 2i+1 and 2i+2.
// Levels are counted from the root, which sits on level 0.

// Index returns the heap index of the offset-th node on the given level.
// It panics if offset is not smaller than the width of that level.
func Index(level, offset int) int {
	width := 1 << level
	if offset < 0 || offset >= width {
		panic(fmt.Errorf(
			"BUG: offset %d out of range for level %d (width %d)",
			offset, level, width,
		))
	}
	return width - 1 + offset
}

// Parent returns the parent of node i.
// The root has no parent, in which case ok is false.
func Parent(i int) (parent int, ok bool) {
	if i <= 0 {
		return 0, false
	}
	return (i - 1) >> 1, true
}

// Sibling returns the other child of i's parent.
// Odd indices are left children, so their sibling is to the right.
func Sibling(i int) (sibling int, ok bool) {
	if i <= 0 {
		return 0, false
	}
	if IsLeft(i) {
		return i + 1, true
	}
	return i - 1, true
}

// Siblings returns i and its sibling ordered as (left, right).
func Siblings(i int) (left, right int, ok bool) {
	if i <= 0 {
		return 0, 0, false
	}
	if IsLeft(i) {
		return i, i + 1, true
	}
	return i - 1, i, true
}

// Ancestors returns the chain of parents from i up to the root.
// The root is the last element; i itself is never included.
func Ancestors(i int) []int {
	if i <= 0 {
		return nil
	}
	level, _ := DepthAndOffset(i)
	out := make([]int, 0, level)
	for p, ok := Parent(i); ok; p, ok = Parent(p) {
		out = append(out, p)
	}
	return out
}

// DepthAndOffset is the inverse of [Index].
func DepthAndOffset(i int) (level, offset int) {
	level = bits.Len(uint(i+1)) - 1
	offset = i - (1<<level - 1)
	return level, offset
}

// Base returns the heap index of the leftmost node on i's level.
func Base(i int) int {
	_, offset := DepthAndOffset(i)
	return i - offset
}

// IsLeft reports whether i is a left child.
// The root is neither.
func IsLeft(i int) bool {
	return i > 0 && i&1 == 1
}

func LeftChild(i int) int {
	return 2*i + 1
}

func RightChild(i int) int {
	return 2*i + 2
}

// LevelRange returns the half-open range [start, end) of heap indices
// holding the nodes of the given level.
func LevelRange(level int) (start, end int) {
	return 1<<level - 1, 1<<(level+1) - 1
}
