package storage

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// NodeStorer holds fixed-width node hashes addressed by heap index.
type NodeStorer interface {
	// Get returns the hash at index i, or false if the slot was never written.
	Get(i int) ([]byte, bool)
	// Put copies val into slot i.
	Put(i int, val []byte)
	// Len returns the number of slots.
	Len() int
	// Width returns the byte width of every slot.
	Width() int
}

var _ NodeStorer = &FlatNodeStore{}

// FlatNodeStore backs every node with a single contiguous allocation.
// Slots start out zeroed and unwritten; the written set distinguishes a
// zero hash from a slot that was never filled.
type FlatNodeStore struct {
	width   int
	mem     []byte
	written *bitset.BitSet
}

// NewFlatNodeStore allocates n slots of the given width.
func NewFlatNodeStore(n, width int) *FlatNodeStore {
	if n <= 0 {
		panic(fmt.Errorf("BUG: node count must be positive (got %d)", n))
	}
	if width <= 0 {
		panic(fmt.Errorf("BUG: hash width must be positive (got %d)", width))
	}
	return &FlatNodeStore{
		width:   width,
		mem:     make([]byte, n*width),
		written: bitset.New(uint(n)),
	}
}

func (s *FlatNodeStore) Len() int {
	return len(s.mem) / s.width
}

func (s *FlatNodeStore) Width() int {
	return s.width
}

// Get returns a view into the backing memory.
// The caller must not modify or retain it across writes.
func (s *FlatNodeStore) Get(i int) ([]byte, bool) {
	if i < 0 || i >= s.Len() || !s.written.Test(uint(i)) {
		return nil, false
	}
	return s.slot(i), true
}

func (s *FlatNodeStore) Put(i int, val []byte) {
	if len(val) != s.width {
		panic(fmt.Errorf(
			"BUG: attempted to store %d bytes in a slot of width %d",
			len(val), s.width,
		))
	}
	copy(s.slot(i), val)
	s.written.Set(uint(i))
}

// Slot returns a writable view of slot i and marks it written.
// It lets batch hashers fill a whole level in place.
func (s *FlatNodeStore) Slot(i int) []byte {
	s.written.Set(uint(i))
	return s.slot(i)
}

// Fill copies val into every slot in [start, end).
func (s *FlatNodeStore) Fill(start, end int, val []byte) {
	for i := start; i < end; i++ {
		s.Put(i, val)
	}
}

// Complete reports whether every slot has been written.
func (s *FlatNodeStore) Complete() bool {
	return s.written.Count() == uint(s.Len())
}

// Clone returns a deep copy of the store.
func (s *FlatNodeStore) Clone() *FlatNodeStore {
	mem := make([]byte, len(s.mem))
	copy(mem, s.mem)
	return &FlatNodeStore{
		width:   s.width,
		mem:     mem,
		written: s.written.Clone(),
	}
}

func (s *FlatNodeStore) slot(i int) []byte {
	start := i * s.width
	return s.mem[start : start+s.width : start+s.width]
}
