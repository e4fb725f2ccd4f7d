package bmt_test

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/celestiaorg/bmt"
	"github.com/celestiaorg/bmt/bmttest"
)

func TestFuzzProveVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("TestFuzzProveVerify skipped in short mode.")
	}
	f := fuzz.New().NilChance(0).NumElements(1, 300)

	for round := 0; round < 20; round++ {
		var raw [][hashSize]byte
		f.Fuzz(&raw)
		leaves := make([][]byte, len(raw))
		for i := range raw {
			leaves[i] = raw[i][:]
		}

		tree, err := bmt.FromLeaves(leaves)
		require.NoError(t, err)
		require.Equal(t, bmttest.ReferenceRoot(tree.Hasher(), leaves), tree.Root())
		require.NoError(t, bmttest.ProveAll(tree))

		// random updates keep every proof valid
		var updates []struct {
			Offset uint16
			Leaf   [hashSize]byte
		}
		f.Fuzz(&updates)
		for _, u := range updates {
			offset := int(u.Offset) % tree.NumLeaves()
			require.NoError(t, tree.Set(offset, u.Leaf[:]))
		}
		require.NoError(t, bmttest.CheckTree(tree))
		require.NoError(t, bmttest.ProveAll(tree))
	}
}

// physicalLeaves returns every slot of the leaf level, including the
// padding beyond NumLeaves.
func physicalLeaves(tree *bmt.Tree) [][]byte {
	start, end := bmt.LevelRange(tree.Depth() - 1)
	out := make([][]byte, 0, end-start)
	for i := start; i < end; i++ {
		n, _ := tree.Node(i)
		out = append(out, n)
	}
	return out
}

func TestRapidSetMatchesReference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		leaves := make([][]byte, n)
		for i := range leaves {
			leaves[i] = rapid.SliceOfN(rapid.Byte(), hashSize, hashSize).Draw(t, "leaf")
		}
		tree, err := bmt.FromLeaves(leaves)
		if err != nil {
			t.Fatalf("FromLeaves: %v", err)
		}

		steps := rapid.IntRange(0, 32).Draw(t, "steps")
		for s := 0; s < steps; s++ {
			offset := rapid.IntRange(0, tree.NumLeaves()-1).Draw(t, "offset")
			val := rapid.SliceOfN(rapid.Byte(), hashSize, hashSize).Draw(t, "value")
			if err := tree.Set(offset, val); err != nil {
				t.Fatalf("Set(%d): %v", offset, err)
			}
		}

		want := bmttest.ReferenceRoot(tree.Hasher(), physicalLeaves(tree))
		if got := tree.Root(); string(got) != string(want) {
			t.Fatalf("root %x, reference %x", got, want)
		}
		offset := rapid.IntRange(0, tree.NumLeaves()-1).Draw(t, "prove")
		proof, err := tree.Prove(offset)
		if err != nil {
			t.Fatalf("Prove(%d): %v", offset, err)
		}
		if proof.Len() != tree.Depth()-1 {
			t.Fatalf("proof length %d, want %d", proof.Len(), tree.Depth()-1)
		}
		l, _ := tree.Leaf(offset)
		if !proof.VerifyInclusion(tree.Hasher(), l, tree.Root()) {
			t.Fatalf("proof for %d does not verify", offset)
		}
	})
}

func TestRapidSizeLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.IntRange(1, 12).Draw(t, "depth")
		tree, err := bmt.NewUniform(depth, make([]byte, hashSize))
		if err != nil {
			t.Fatalf("NewUniform: %v", err)
		}
		if tree.Size() != 1<<depth-1 {
			t.Fatalf("size %d for depth %d", tree.Size(), depth)
		}
		if tree.NumLeaves() != 1<<(depth-1) {
			t.Fatalf("%d leaves for depth %d", tree.NumLeaves(), depth)
		}
		start, end := bmt.LevelRange(depth - 1)
		if end != tree.Size() || end-start != tree.NumLeaves() {
			t.Fatalf("leaf level [%d, %d) does not end the tree of size %d", start, end, tree.Size())
		}
	})
}
