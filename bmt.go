package bmt

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"

	"go.uber.org/zap"

	"github.com/celestiaorg/bmt/storage"
)

// MaxDepth is the deepest tree the constructors accept.
const MaxDepth = 32

var (
	ErrInvalidOffset = errors.New("invalid leaf offset")
	ErrMissingHash   = errors.New("missing node hash")
	ErrInvalidDepth  = errors.New("invalid tree depth")
	ErrInvalidLength = errors.New("invalid hash length")
	ErrNoLeaves      = errors.New("cannot build a tree without leaves")
)

type Options struct {
	Hasher Hasher
	Logger *zap.Logger
}

type Option func(*Options)

// TreeHasher sets the hasher used for inner nodes and proof verification.
// Defaults to SHA3-256.
func TreeHasher(h Hasher) Option {
	return func(opts *Options) {
		opts.Hasher = h
	}
}

// Logger sets the logger receiving construction and rejection events.
// Defaults to a no-op logger.
func Logger(l *zap.Logger) Option {
	return func(opts *Options) {
		opts.Logger = l
	}
}

// Tree is a perfect binary Merkle tree stored in heap order.
//
// Reads (Root, Leaves, Prove and friends) never modify the tree and may run
// concurrently. Set must not run concurrently with any other method on the
// same Tree; callers needing shared mutation have to serialize Set calls
// themselves or swap in modified clones (see the shared package).
type Tree struct {
	treeHasher Hasher
	logger     *zap.Logger
	store      *storage.FlatNodeStore

	depth int
	// numLeaves is the number of addressable leaves. Physical leaf slots past
	// numLeaves hold copies of the last leaf written at construction.
	numLeaves int
}

func applyOptions(setters []Option) *Options {
	opts := &Options{}
	for _, setter := range setters {
		setter(opts)
	}
	if opts.Hasher == nil {
		opts.Hasher = DefaultHasher()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func newTree(depth int, opts *Options) (*Tree, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("%w: got: %v, want: [1, %v]", ErrInvalidDepth, depth, MaxDepth)
	}
	return &Tree{
		treeHasher: opts.Hasher,
		logger:     opts.Logger,
		store:      storage.NewFlatNodeStore(1<<depth-1, opts.Hasher.Size()),
		depth:      depth,
	}, nil
}

// NewUniform builds a tree of the given depth in which every leaf is leaf.
// All nodes on a level are identical, so each level's hash is computed once.
func NewUniform(depth int, leaf []byte, setters ...Option) (*Tree, error) {
	opts := applyOptions(setters)
	if err := validateHash(opts.Hasher, leaf); err != nil {
		return nil, err
	}
	t, err := newTree(depth, opts)
	if err != nil {
		return nil, err
	}
	t.numLeaves = t.Capacity()

	node := leaf
	for level := depth - 1; ; level-- {
		start, end := LevelRange(level)
		t.store.Fill(start, end, node)
		if level == 0 {
			break
		}
		node = t.treeHasher.HashNode(node, node)
	}

	t.logger.Debug("built uniform tree",
		zap.Int("depth", depth),
		zap.Int("leaves", t.numLeaves),
	)
	return t, nil
}

// FromLeaves builds the smallest tree holding the given leaf hashes.
//
// An odd number of leaves (other than one) is padded by duplicating the last
// leaf, and that padded count is the tree's NumLeaves. Physical leaf slots
// beyond it are filled with the same last leaf so that every node holds a
// real hash.
func FromLeaves(leaves [][]byte, setters ...Option) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}
	opts := applyOptions(setters)
	for i, leaf := range leaves {
		if err := validateHash(opts.Hasher, leaf); err != nil {
			return nil, fmt.Errorf("leaf %d: %w", i, err)
		}
	}

	depth := bits.Len(uint(len(leaves)-1)) + 1
	t, err := newTree(depth, opts)
	if err != nil {
		return nil, err
	}
	t.numLeaves = len(leaves)
	if t.numLeaves > 1 && t.numLeaves%2 == 1 {
		t.numLeaves++
	}

	leafStart, leafEnd := LevelRange(depth - 1)
	for i, leaf := range leaves {
		t.store.Put(leafStart+i, leaf)
	}
	t.store.Fill(leafStart+len(leaves), leafEnd, leaves[len(leaves)-1])

	if err := t.computeLevels(); err != nil {
		return nil, err
	}

	t.logger.Debug("built tree from leaves",
		zap.Int("depth", depth),
		zap.Int("pushed", len(leaves)),
		zap.Int("leaves", t.numLeaves),
	)
	return t, nil
}

// computeLevels fills every inner level bottom-up from the leaf level.
func (t *Tree) computeLevels() error {
	lh, batched := t.treeHasher.(LevelHasher)
	for level := t.depth - 2; level >= 0; level-- {
		start, end := LevelRange(level)
		childStart := LeftChild(start)

		if batched {
			parents := make([][]byte, end-start)
			children := make([][]byte, 2*(end-start))
			for i := range children {
				child, err := t.node(childStart + i)
				if err != nil {
					return err
				}
				children[i] = child
			}
			for i := range parents {
				parents[i] = t.store.Slot(start + i)
			}
			if err := lh.HashLevel(parents, children); err != nil {
				return fmt.Errorf("failed to hash level %d: %w", level, err)
			}
			continue
		}

		for i := start; i < end; i++ {
			if err := t.rehash(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// rehash recomputes inner node i from its current children.
func (t *Tree) rehash(i int) error {
	left, err := t.node(LeftChild(i))
	if err != nil {
		return err
	}
	right, err := t.node(RightChild(i))
	if err != nil {
		return err
	}
	t.store.Put(i, t.treeHasher.HashNode(left, right))
	return nil
}

func (t *Tree) node(i int) ([]byte, error) {
	val, ok := t.store.Get(i)
	if !ok {
		return nil, fmt.Errorf("%w: node %d", ErrMissingHash, i)
	}
	return val, nil
}

// Set replaces the leaf at offset and recomputes the path up to the root.
// Setting a leaf to its current value is a no-op. On error the tree is left
// untouched.
func (t *Tree) Set(offset int, hash []byte) error {
	if err := t.validateOffset(offset); err != nil {
		t.logger.Debug("rejected set", zap.Int("offset", offset), zap.Error(err))
		return err
	}
	if err := validateHash(t.treeHasher, hash); err != nil {
		t.logger.Debug("rejected set", zap.Int("offset", offset), zap.Error(err))
		return err
	}

	i := t.leafIndex(offset)
	if cur, ok := t.store.Get(i); ok && bytes.Equal(cur, hash) {
		return nil
	}
	t.store.Put(i, hash)

	for p, ok := Parent(i); ok; p, ok = Parent(p) {
		if err := t.rehash(p); err != nil {
			return err
		}
	}
	return nil
}

// Prove returns the inclusion proof for the leaf at offset.
// The proof lists sibling hashes from the leaf up to the root's children.
func (t *Tree) Prove(offset int) (Proof, error) {
	if err := t.validateOffset(offset); err != nil {
		t.logger.Debug("rejected prove", zap.Int("offset", offset), zap.Error(err))
		return Proof{}, err
	}

	i := t.leafIndex(offset)
	nodes := make([]ProofNode, 0, t.depth-1)
	for i != 0 {
		sibling, _ := Sibling(i)
		hash, err := t.node(sibling)
		if err != nil {
			return Proof{}, err
		}
		dir := Right
		if IsLeft(i) {
			dir = Left
		}
		nodes = append(nodes, ProofNode{
			Direction: dir,
			Sibling:   append([]byte(nil), hash...),
		})
		i, _ = Parent(i)
	}
	return NewProof(offset, nodes), nil
}

// Root returns a copy of the root hash.
func (t *Tree) Root() []byte {
	root, _ := t.store.Get(0)
	return append([]byte(nil), root...)
}

// Leaf returns a copy of the leaf hash at offset.
func (t *Tree) Leaf(offset int) ([]byte, error) {
	if err := t.validateOffset(offset); err != nil {
		return nil, err
	}
	leaf, err := t.node(t.leafIndex(offset))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), leaf...), nil
}

// Leaves returns copies of all addressable leaves in offset order.
func (t *Tree) Leaves() [][]byte {
	leaves := make([][]byte, t.numLeaves)
	for i := range leaves {
		leaf, _ := t.store.Get(t.leafIndex(i))
		leaves[i] = append([]byte(nil), leaf...)
	}
	return leaves
}

// Node returns a copy of the node at heap index i.
func (t *Tree) Node(i int) ([]byte, bool) {
	val, ok := t.store.Get(i)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), val...), true
}

// Depth returns the number of levels of the tree.
func (t *Tree) Depth() int {
	return t.depth
}

// Size returns the total number of nodes, 2^depth - 1.
func (t *Tree) Size() int {
	return t.store.Len()
}

// NumLeaves returns the number of addressable leaves.
func (t *Tree) NumLeaves() int {
	return t.numLeaves
}

// Capacity returns the number of physical leaf slots, 2^(depth-1).
func (t *Tree) Capacity() int {
	return 1 << (t.depth - 1)
}

// Hasher returns the hasher the tree was built with.
// Proofs generated by the tree verify with it.
func (t *Tree) Hasher() Hasher {
	return t.treeHasher
}

// Clone returns an independent copy of the tree.
func (t *Tree) Clone() *Tree {
	return &Tree{
		treeHasher: t.treeHasher,
		logger:     t.logger,
		store:      t.store.Clone(),
		depth:      t.depth,
		numLeaves:  t.numLeaves,
	}
}

func (t *Tree) validateOffset(offset int) error {
	if offset < 0 || offset >= t.numLeaves {
		return fmt.Errorf("%w: got: %v, want: [0, %v)", ErrInvalidOffset, offset, t.numLeaves)
	}
	return nil
}

func (t *Tree) leafIndex(offset int) int {
	return Index(t.depth-1, offset)
}
