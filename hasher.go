package bmt

import (
	"fmt"
	"hash"
	"sync"

	"golang.org/x/crypto/sha3"
)

var _ Hasher = (*NodeHasher)(nil)

// NodeHasher adapts any hash.Hash constructor to the Hasher interface.
// Hash states are pooled, so one NodeHasher may be shared by many
// goroutines verifying proofs at the same time.
type NodeHasher struct {
	size int
	pool sync.Pool
}

// NewNodeHasher returns a NodeHasher creating its hash states with newHash.
func NewNodeHasher(newHash func() hash.Hash) *NodeHasher {
	h := newHash()
	n := &NodeHasher{size: h.Size()}
	n.pool.New = func() interface{} {
		return newHash()
	}
	n.pool.Put(h)
	return n
}

// DefaultHasher returns the SHA3-256 hasher trees use unless
// configured otherwise.
func DefaultHasher() *NodeHasher {
	return NewNodeHasher(sha3.New256)
}

// Size returns the number of bytes HashNode will return.
func (n *NodeHasher) Size() int {
	return n.size
}

// HashNode computes H(left || right).
//
//nolint:errcheck
func (n *NodeHasher) HashNode(left, right []byte) []byte {
	h := n.pool.Get().(hash.Hash)
	h.Reset()
	h.Write(left)
	h.Write(right)
	res := h.Sum(make([]byte, 0, n.size))
	n.pool.Put(h)
	return res
}

// validateHash checks that a caller supplied hash has the hasher's width.
func validateHash(h Hasher, val []byte) error {
	if len(val) != h.Size() {
		return fmt.Errorf("%w: got: %v, want: %v", ErrInvalidLength, len(val), h.Size())
	}
	return nil
}
