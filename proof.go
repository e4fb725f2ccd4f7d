package bmt

import (
	"bytes"
	"errors"
	"fmt"
)

var ErrInvalidProof = errors.New("invalid proof")

// Direction is the side of its parent a path node occupies.
type Direction uint8

const (
	// Left means the path node is a left child and its sibling sits to the
	// right, so the parent is H(node || sibling).
	Left Direction = iota
	// Right means the path node is a right child, so the parent is
	// H(sibling || node).
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ProofNode is one step of an inclusion proof.
type ProofNode struct {
	Direction Direction
	Sibling   []byte
}

// Proof is an inclusion proof for a single leaf. Its nodes are ordered
// from the leaf level up to the children of the root.
type Proof struct {
	// leafIndex is the offset of the proven leaf in its level.
	leafIndex int
	nodes     []ProofNode
}

// NewProof constructs a proof for the leaf at leafIndex.
func NewProof(leafIndex int, nodes []ProofNode) Proof {
	return Proof{leafIndex: leafIndex, nodes: nodes}
}

// LeafIndex returns the offset of the leaf this proof was generated for.
func (proof Proof) LeafIndex() int {
	return proof.leafIndex
}

// Nodes returns the proof steps, leaf level first.
func (proof Proof) Nodes() []ProofNode {
	return proof.nodes
}

// Len returns the number of steps, which is the tree depth minus one.
func (proof Proof) Len() int {
	return len(proof.nodes)
}

// Verify folds leaf with every sibling in the proof and returns the
// resulting root. The caller compares it with a trusted root.
func (proof Proof) Verify(h Hasher, leaf []byte) []byte {
	cur := leaf
	for _, n := range proof.nodes {
		if n.Direction == Left {
			cur = h.HashNode(cur, n.Sibling)
		} else {
			cur = h.HashNode(n.Sibling, cur)
		}
	}
	return cur
}

// VerifyInclusion reports whether leaf is included under root.
func (proof Proof) VerifyInclusion(h Hasher, leaf, root []byte) bool {
	return bytes.Equal(proof.Verify(h, leaf), root)
}

// ValidateBasic checks that the proof is well formed for a tree using
// hashes of hashSize bytes: every sibling has that width and the
// directions are the ones the leaf index implies.
func (proof Proof) ValidateBasic(hashSize int) error {
	if len(proof.nodes) >= MaxDepth {
		return fmt.Errorf("%w: got %d nodes, want less than %d", ErrInvalidProof, len(proof.nodes), MaxDepth)
	}
	if proof.leafIndex < 0 || proof.leafIndex >= 1<<len(proof.nodes) {
		return fmt.Errorf("%w: leaf index %d does not fit a tree of depth %d",
			ErrInvalidProof, proof.leafIndex, len(proof.nodes)+1)
	}

	i := Index(len(proof.nodes), proof.leafIndex)
	for step, n := range proof.nodes {
		if len(n.Sibling) != hashSize {
			return fmt.Errorf("%w: node %d: sibling length got: %v, want: %v",
				ErrInvalidProof, step, len(n.Sibling), hashSize)
		}
		want := Right
		if IsLeft(i) {
			want = Left
		}
		if n.Direction != want {
			return fmt.Errorf("%w: node %d: direction got: %v, want: %v",
				ErrInvalidProof, step, n.Direction, want)
		}
		i, _ = Parent(i)
	}
	return nil
}
