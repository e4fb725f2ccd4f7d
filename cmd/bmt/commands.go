package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/celestiaorg/bmt"
	"github.com/celestiaorg/bmt/defaulthasher"
	"github.com/celestiaorg/bmt/digest"
	"github.com/celestiaorg/bmt/shared"
)

// proofFile is what prove writes and verify reads.
type proofFile struct {
	Hasher string        `json:"hasher"`
	Root   digest.Digest `json:"root"`
	Leaf   digest.Digest `json:"leaf"`
	Proof  bmt.Proof     `json:"proof"`
}

// treeOptions resolves the global flags into tree options.
func treeOptions(c *cli.Context, l *zap.Logger) ([]bmt.Option, error) {
	h, err := defaulthasher.New(c.String("hasher"))
	if err != nil {
		return nil, err
	}
	return []bmt.Option{bmt.TreeHasher(h), bmt.Logger(l)}, nil
}

func rootCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	opts, err := treeOptions(c, l)
	if err != nil {
		return err
	}
	leaf, err := digest.Parse(c.String("leaf"))
	if err != nil {
		return err
	}
	tree, err := bmt.NewUniform(c.Int("depth"), leaf, opts...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, digest.Digest(tree.Root()))
	return err
}

func proveCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	opts, err := treeOptions(c, l)
	if err != nil {
		return err
	}
	var leaves [][]byte
	for i, s := range c.StringSlice("leaf") {
		leaf, err := digest.Parse(s)
		if err != nil {
			return fmt.Errorf("leaf %d: %w", i, err)
		}
		leaves = append(leaves, leaf)
	}
	tree, err := bmt.FromLeaves(leaves, opts...)
	if err != nil {
		return err
	}

	index := c.Int("index")
	proof, err := tree.Prove(index)
	if err != nil {
		return err
	}
	leaf, err := tree.Leaf(index)
	if err != nil {
		return err
	}
	l.Debug("created proof",
		zap.Int("index", index),
		zap.Int("depth", tree.Depth()),
		zap.Stringer("root", digest.Digest(tree.Root())),
	)

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(proofFile{
		Hasher: c.String("hasher"),
		Root:   tree.Root(),
		Leaf:   leaf,
		Proof:  proof,
	})
}

func verifyCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	data, err := readInput(c, c.String("proof"))
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%s: not valid json", c.String("proof"))
	}
	doc := gjson.ParseBytes(data)

	hasherName := c.String("hasher")
	if stored := doc.Get("hasher"); stored.Exists() && !c.IsSet("hasher") {
		hasherName = stored.String()
	}
	h, err := defaulthasher.New(hasherName)
	if err != nil {
		return err
	}

	var proof bmt.Proof
	if err := proof.UnmarshalJSON([]byte(doc.Get("proof").Raw)); err != nil {
		return err
	}
	if err := proof.ValidateBasic(h.Size()); err != nil {
		return err
	}
	leaf, err := flagOrStored(c, doc, "leaf")
	if err != nil {
		return err
	}
	root, err := flagOrStored(c, doc, "root")
	if err != nil {
		return err
	}

	got := digest.Digest(proof.Verify(h, leaf))
	if !got.Equal(root) {
		l.Debug("proof rejected",
			zap.Int("index", proof.LeafIndex()),
			zap.Stringer("computed", got),
			zap.Stringer("root", root),
		)
		return cli.Exit(fmt.Sprintf("proof for leaf %d does not verify: computed root %s, want %s",
			proof.LeafIndex(), got, root), 1)
	}
	_, err = fmt.Fprintf(c.App.Writer, "ok: leaf %d is included under %s\n", proof.LeafIndex(), root)
	return err
}

// flagOrStored returns the hex flag name if set, otherwise the field of
// the same name in the proof file.
func flagOrStored(c *cli.Context, doc gjson.Result, name string) (digest.Digest, error) {
	if c.IsSet(name) {
		return digest.Parse(c.String(name))
	}
	stored := doc.Get(name)
	if !stored.Exists() {
		return nil, fmt.Errorf("no %s given and none stored with the proof", name)
	}
	return digest.Parse(stored.String())
}

func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "-" {
		r := c.App.Reader
		if r == nil {
			r = os.Stdin
		}
		return io.ReadAll(r)
	}
	return os.ReadFile(path)
}

func benchCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	opts, err := treeOptions(c, l)
	if err != nil {
		return err
	}
	depth := c.Int("depth")
	if depth < 1 || depth > bmt.MaxDepth {
		return fmt.Errorf("%w: got: %v", bmt.ErrInvalidDepth, depth)
	}
	leaves := make([][]byte, 1<<(depth-1))
	for i := range leaves {
		leaves[i] = make([]byte, 32)
		binary.BigEndian.PutUint64(leaves[i][24:], uint64(i))
	}

	start := time.Now()
	tree, err := bmt.FromLeaves(leaves, opts...)
	if err != nil {
		return err
	}
	built := time.Since(start)

	start = time.Now()
	if err := shared.VerifyAll(c.Context, tree, c.Int("verifiers")); err != nil {
		return err
	}
	verified := time.Since(start)

	l.Info("bench finished",
		zap.Int("depth", depth),
		zap.Int("leaves", tree.NumLeaves()),
		zap.Duration("build", built),
		zap.Duration("verify", verified),
	)
	_, err = fmt.Fprintf(c.App.Writer, "leaves=%d build=%s verify=%s root=%s\n",
		tree.NumLeaves(), built, verified, digest.Digest(tree.Root()))
	return err
}
