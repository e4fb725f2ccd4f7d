// Package shared lets many goroutines read a bmt tree while others
// modify it. Readers load an immutable snapshot; writers are serialized
// and publish modified clones.
package shared

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/celestiaorg/bmt"
	"github.com/celestiaorg/bmt/digest"
)

// Tree is a handle to the latest snapshot of a bmt tree.
// The zero value is not usable; use New.
type Tree struct {
	mu      sync.Mutex
	latest  atomic.Pointer[bmt.Tree]
	version atomic.Uint64
	logger  *zap.Logger
}

// New publishes tree as the first snapshot. The handle takes ownership:
// the caller must not modify tree afterwards.
func New(tree *bmt.Tree, logger *zap.Logger) *Tree {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Tree{logger: logger}
	s.latest.Store(tree)
	return s
}

// Load returns the latest snapshot. Snapshots are never modified, so the
// result may be read concurrently with other readers and with writers.
func (s *Tree) Load() *bmt.Tree {
	return s.latest.Load()
}

// Version returns the number of updates published so far.
func (s *Tree) Version() uint64 {
	return s.version.Load()
}

// Update clones the latest snapshot, applies fn to the clone and publishes
// it if fn succeeds. Updates are serialized. When fn fails the published
// snapshot is unchanged.
func (s *Tree) Update(fn func(*bmt.Tree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.latest.Load().Clone()
	if err := fn(next); err != nil {
		s.logger.Debug("discarded update", zap.Error(err))
		return err
	}
	s.latest.Store(next)
	v := s.version.Add(1)
	s.logger.Debug("published snapshot",
		zap.Uint64("version", v),
		zap.Stringer("root", digest.Digest(next.Root())),
	)
	return nil
}

// Set replaces one leaf, see bmt.Tree.Set.
func (s *Tree) Set(offset int, hash []byte) error {
	return s.Update(func(t *bmt.Tree) error {
		return t.Set(offset, hash)
	})
}
