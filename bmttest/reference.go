package bmttest

import (
	"bytes"
	"fmt"

	"github.com/celestiaorg/bmt"
)

// ReferenceRoot computes the root of leaves recursively, without heap
// indexing. Leaves are padded to the next power of two by repeating the
// last one, which is how bmt.FromLeaves fills its leaf level.
func ReferenceRoot(h bmt.Hasher, leaves [][]byte) []byte {
	if len(leaves) == 0 {
		return nil
	}
	width := 1
	for width < len(leaves) {
		width <<= 1
	}
	padded := make([][]byte, width)
	copy(padded, leaves)
	for i := len(leaves); i < width; i++ {
		padded[i] = leaves[len(leaves)-1]
	}
	return subtreeRoot(h, padded)
}

func subtreeRoot(h bmt.Hasher, leaves [][]byte) []byte {
	if len(leaves) == 1 {
		return leaves[0]
	}
	k := len(leaves) / 2
	return h.HashNode(subtreeRoot(h, leaves[:k]), subtreeRoot(h, leaves[k:]))
}

// CheckTree verifies that every inner node of tree is the hash of its
// children and that every slot holds a hash of the right width.
func CheckTree(tree *bmt.Tree) error {
	h := tree.Hasher()
	for i := 0; i < tree.Size(); i++ {
		val, ok := tree.Node(i)
		if !ok {
			return fmt.Errorf("node %d: %w", i, bmt.ErrMissingHash)
		}
		if len(val) != h.Size() {
			return fmt.Errorf("node %d: %w: got: %v, want: %v", i, bmt.ErrInvalidLength, len(val), h.Size())
		}
		if bmt.LeftChild(i) >= tree.Size() {
			continue
		}
		left, _ := tree.Node(bmt.LeftChild(i))
		right, _ := tree.Node(bmt.RightChild(i))
		if want := h.HashNode(left, right); !bytes.Equal(val, want) {
			return fmt.Errorf("node %d: got %x, want H(children) = %x", i, val, want)
		}
	}
	return nil
}

// ProveAll checks that every leaf of tree has a well formed proof that
// folds back to the tree's root.
func ProveAll(tree *bmt.Tree) error {
	h := tree.Hasher()
	root := tree.Root()
	for offset, leaf := range tree.Leaves() {
		proof, err := tree.Prove(offset)
		if err != nil {
			return fmt.Errorf("leaf %d: %w", offset, err)
		}
		if err := proof.ValidateBasic(h.Size()); err != nil {
			return fmt.Errorf("leaf %d: %w", offset, err)
		}
		if !proof.VerifyInclusion(h, leaf, root) {
			return fmt.Errorf("leaf %d: proof does not verify against root %x", offset, root)
		}
	}
	return nil
}
