package bmttest

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/bmt"
)

type HasherFactory func() bmt.Hasher

// TestHasherCompliance runs the behaviour every bmt.Hasher must have
// against hashers produced by f.
func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("node is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()
		l, r := bytes.Repeat([]byte{1}, h.Size()), bytes.Repeat([]byte{2}, h.Size())
		require.Equal(t, h.HashNode(l, r), h.HashNode(l, r))
		require.Len(t, h.HashNode(l, r), h.Size())
	})

	t.Run("node respects order", func(t *testing.T) {
		t.Parallel()

		h := f()
		l, r := bytes.Repeat([]byte{1}, h.Size()), bytes.Repeat([]byte{2}, h.Size())
		require.NotEqual(t, h.HashNode(l, r), h.HashNode(r, l))
	})

	t.Run("inputs are not retained", func(t *testing.T) {
		t.Parallel()

		h := f()
		l, r := bytes.Repeat([]byte{3}, h.Size()), bytes.Repeat([]byte{4}, h.Size())
		want := h.HashNode(l, r)
		l[0], r[0] = 0, 0
		_ = h.HashNode(l, r)
		l[0], r[0] = 3, 4
		require.Equal(t, want, h.HashNode(l, r))
	})

	t.Run("level matches nodes", func(t *testing.T) {
		t.Parallel()

		h := f()
		lh, ok := h.(bmt.LevelHasher)
		if !ok {
			t.Skip("not a LevelHasher")
		}

		children := make([][]byte, 8)
		for i := range children {
			children[i] = bytes.Repeat([]byte{byte(i)}, h.Size())
		}
		parents := make([][]byte, 4)
		for i := range parents {
			parents[i] = make([]byte, h.Size())
		}
		require.NoError(t, lh.HashLevel(parents, children))
		for i, p := range parents {
			require.Equal(t, h.HashNode(children[2*i], children[2*i+1]), p)
		}

		require.ErrorIs(t, lh.HashLevel(parents, children[:7]), bmt.ErrInvalidLength)
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		h := f()
		l, r := bytes.Repeat([]byte{5}, h.Size()), bytes.Repeat([]byte{6}, h.Size())
		want := h.HashNode(l, r)

		var wg sync.WaitGroup
		results := make([][]byte, 16)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = h.HashNode(l, r)
			}(i)
		}
		wg.Wait()
		for _, got := range results {
			require.Equal(t, want, got)
		}
	})

	t.Run("trees match reference", func(t *testing.T) {
		t.Parallel()

		h := f()
		for n := 1; n <= 9; n++ {
			leaves := make([][]byte, n)
			for i := range leaves {
				leaves[i] = bytes.Repeat([]byte{byte(i + 1)}, h.Size())
			}
			tree, err := bmt.FromLeaves(leaves, bmt.TreeHasher(h))
			require.NoError(t, err)
			require.Equal(t, ReferenceRoot(h, leaves), tree.Root(), "n=%d", n)
			require.NoError(t, CheckTree(tree), "n=%d", n)
			require.NoError(t, ProveAll(tree), "n=%d", n)
		}
	})
}
