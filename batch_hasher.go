package bmt

import (
	"crypto/sha256"
	"fmt"

	"github.com/prysmaticlabs/gohashtree"
)

var _ LevelHasher = (*BatchHasher)(nil)

// BatchHasher is a SHA-256 LevelHasher backed by gohashtree, which hashes
// many 64-byte blocks per call using the vectorized SHA-256 routines
// available on the host. Its digests are identical to
// NewNodeHasher(sha256.New).
type BatchHasher struct{}

// NewBatchHasher creates a new batch hasher.
func NewBatchHasher() *BatchHasher {
	return &BatchHasher{}
}

func (*BatchHasher) Size() int {
	return sha256.Size
}

// HashNode hashes a single pair of 32-byte children.
func (b *BatchHasher) HashNode(left, right []byte) []byte {
	if len(left) != sha256.Size || len(right) != sha256.Size {
		panic(fmt.Errorf(
			"BUG: batch hasher requires %d-byte children (got %d and %d)",
			sha256.Size, len(left), len(right),
		))
	}
	var digests [1][32]byte
	chunks := [2][32]byte{[32]byte(left), [32]byte(right)}
	if err := gohashtree.Hash(digests[:], chunks[:]); err != nil {
		panic(fmt.Errorf("BUG: hashing a single pair failed: %w", err))
	}
	res := make([]byte, sha256.Size)
	copy(res, digests[0][:])
	return res
}

// HashLevel hashes every adjacent pair in children into parents.
func (b *BatchHasher) HashLevel(parents, children [][]byte) error {
	if len(children) != 2*len(parents) {
		return fmt.Errorf(
			"%w: got %d children for %d parents",
			ErrInvalidLength, len(children), len(parents),
		)
	}
	if len(parents) == 0 {
		return nil
	}

	chunks := make([][32]byte, len(children))
	for i, c := range children {
		if len(c) != sha256.Size {
			return fmt.Errorf("%w: got: %v, want: %v", ErrInvalidLength, len(c), sha256.Size)
		}
		copy(chunks[i][:], c)
	}
	digests := make([][32]byte, len(parents))
	if err := gohashtree.Hash(digests, chunks); err != nil {
		return fmt.Errorf("failed to hash level of %d nodes: %w", len(parents), err)
	}
	for i, p := range parents {
		if len(p) != sha256.Size {
			return fmt.Errorf("%w: got: %v, want: %v", ErrInvalidLength, len(p), sha256.Size)
		}
		copy(p, digests[i][:])
	}
	return nil
}
