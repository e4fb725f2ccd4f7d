// Package defaulthasher resolves the hash functions trees can be built with
// by name, so that command line tools and configuration files can select one.
package defaulthasher

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/celestiaorg/bmt"
)

const (
	SHA3_256    = "sha3-256"
	SHA256      = "sha256"
	Keccak256   = "keccak256"
	BLAKE2b_256 = "blake2b-256"
)

// Default is the name of the hasher trees use when none is configured.
const Default = SHA3_256

var ErrUnknownHasher = errors.New("unknown hasher")

var registry = map[string]func() bmt.Hasher{
	SHA3_256: func() bmt.Hasher {
		return bmt.NewNodeHasher(sha3.New256)
	},
	// SHA-256 is served by the batch hasher, which produces the same
	// digests as a plain sha256 NodeHasher.
	SHA256: func() bmt.Hasher {
		return bmt.NewBatchHasher()
	},
	Keccak256: func() bmt.Hasher {
		return bmt.NewNodeHasher(sha3.NewLegacyKeccak256)
	},
	BLAKE2b_256: func() bmt.Hasher {
		return bmt.NewNodeHasher(newBlake2b256)
	},
}

// New returns a fresh hasher for the given name.
func New(name string) (bmt.Hasher, error) {
	newHasher, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q, want one of %v", ErrUnknownHasher, name, Names())
	}
	return newHasher(), nil
}

// Names lists the supported hasher names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlainSHA256 returns a non batched SHA-256 hasher. Trees built with it
// have the same roots as trees built with New(SHA256).
func PlainSHA256() bmt.Hasher {
	return bmt.NewNodeHasher(sha256.New)
}

func newBlake2b256() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Errorf("BUG: unkeyed blake2b-256: %w", err))
	}
	return h
}
