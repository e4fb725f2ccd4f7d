package bmt

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func sum256(data ...[]byte) []byte {
	h := sha256.New()
	for _, d := range data {
		h.Write(d) //nolint:errcheck
	}
	return h.Sum(nil)
}

func TestNodeHasher_HashNode(t *testing.T) {
	left, right := bytes.Repeat([]byte{0}, 32), bytes.Repeat([]byte{1}, 32)

	h := DefaultHasher()
	assert.Equal(t, 32, h.Size())
	want := sha3.Sum256(append(append([]byte{}, left...), right...))
	assert.Equal(t, want[:], h.HashNode(left, right))

	plain := NewNodeHasher(sha256.New)
	assert.Equal(t, sum256(left, right), plain.HashNode(left, right))

	// pooled states must be reset between calls
	assert.Equal(t, plain.HashNode(left, right), plain.HashNode(left, right))
}

func TestBatchHasher_HashNode(t *testing.T) {
	b := NewBatchHasher()
	assert.Equal(t, sha256.Size, b.Size())

	left, right := bytes.Repeat([]byte{7}, 32), bytes.Repeat([]byte{9}, 32)
	assert.Equal(t, sum256(left, right), b.HashNode(left, right))

	assert.Panics(t, func() { b.HashNode(left[:31], right) })
	assert.Panics(t, func() { b.HashNode(left, append(right, 0)) })
}

func TestBatchHasher_HashLevel(t *testing.T) {
	b := NewBatchHasher()
	children := make([][]byte, 16)
	for i := range children {
		children[i] = bytes.Repeat([]byte{byte(i)}, 32)
	}
	parents := make([][]byte, 8)
	for i := range parents {
		parents[i] = make([]byte, 32)
	}
	require.NoError(t, b.HashLevel(parents, children))
	for i, p := range parents {
		assert.Equal(t, sum256(children[2*i], children[2*i+1]), p, "parent %d", i)
	}

	require.NoError(t, b.HashLevel(nil, nil))

	err := b.HashLevel(parents, children[:15])
	require.ErrorIs(t, err, ErrInvalidLength)

	children[3] = children[3][:16]
	err = b.HashLevel(parents, children)
	require.ErrorIs(t, err, ErrInvalidLength)

	children[3] = bytes.Repeat([]byte{3}, 32)
	parents[0] = make([]byte, 31)
	err = b.HashLevel(parents, children)
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestValidateHash(t *testing.T) {
	h := DefaultHasher()
	require.NoError(t, validateHash(h, make([]byte, 32)))
	require.ErrorIs(t, validateHash(h, make([]byte, 31)), ErrInvalidLength)
	require.ErrorIs(t, validateHash(h, nil), ErrInvalidLength)
}
