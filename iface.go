package bmt

// Hasher computes the digest of an inner node from its two children.
// Implementations must be deterministic and safe for concurrent use.
type Hasher interface {
	// Size returns the digest width in bytes. Every leaf and node
	// stored in a tree using this Hasher has exactly this width.
	Size() int

	// HashNode returns H(left || right). The left bytes always
	// precede the right bytes in the hashed input.
	HashNode(left, right []byte) []byte
}

// LevelHasher is a Hasher that can hash a whole tree level at once.
// Trees use it during construction when the configured Hasher supports it.
type LevelHasher interface {
	Hasher

	// HashLevel writes H(children[2i] || children[2i+1]) into parents[i].
	// len(children) must equal 2*len(parents) and every parents[i]
	// must have length Size().
	HashLevel(parents, children [][]byte) error
}
