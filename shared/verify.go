package shared

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/celestiaorg/bmt"
)

var ErrRootMismatch = errors.New("proof does not verify against root")

// VerifyAll proves every leaf of tree and checks each proof against the
// root, using up to workers goroutines over disjoint leaf ranges. A
// non-positive workers uses GOMAXPROCS. The first failure cancels the
// remaining work and is returned.
func VerifyAll(ctx context.Context, tree *bmt.Tree, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := tree.NumLeaves()
	if workers > n {
		workers = n
	}
	root := tree.Root()
	h := tree.Hasher()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			for offset := start; offset < end; offset++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				leaf, err := tree.Leaf(offset)
				if err != nil {
					return err
				}
				proof, err := tree.Prove(offset)
				if err != nil {
					return err
				}
				if !proof.VerifyInclusion(h, leaf, root) {
					return fmt.Errorf("%w: leaf %d", ErrRootMismatch, offset)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
