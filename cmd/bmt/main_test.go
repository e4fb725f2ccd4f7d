package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"bmt"}, args...))
	return out.String(), err
}

func hexLeaf(b byte) string {
	return hex.EncodeToString(bytes.Repeat([]byte{b}, 32))
}

func TestRootCommand(t *testing.T) {
	out, err := run(t, "root", "--depth", "20", "--leaf", hexLeaf(0xAB))
	require.NoError(t, err)
	assert.Equal(t, "d4490f4d374ca8a44685fe9471c5b8dbe58cdffd13d30d9aba15dd29efb92930\n", out)

	out, err = run(t, "root", "--depth", "1", "--leaf", hexLeaf(0x01))
	require.NoError(t, err)
	assert.Equal(t, hexLeaf(0x01)+"\n", out)
}

func TestRootCommand_HasherFlag(t *testing.T) {
	out, err := run(t, "--hasher", "sha256", "root", "--depth", "2", "--leaf", hexLeaf(0))
	require.NoError(t, err)
	sha3Out, err := run(t, "root", "--depth", "2", "--leaf", hexLeaf(0))
	require.NoError(t, err)
	assert.NotEqual(t, sha3Out, out)

	_, err = run(t, "--hasher", "md5", "root", "--leaf", hexLeaf(0))
	require.Error(t, err)
}

func TestRootCommand_HasherEnv(t *testing.T) {
	t.Setenv("BMT_HASHER", "sha256")
	withEnv, err := run(t, "root", "--depth", "2", "--leaf", hexLeaf(0))
	require.NoError(t, err)
	withFlag, err := run(t, "--hasher", "sha256", "root", "--depth", "2", "--leaf", hexLeaf(0))
	require.NoError(t, err)
	assert.Equal(t, withFlag, withEnv)
}

func TestProveThenVerify(t *testing.T) {
	out, err := run(t, "prove",
		"--leaf", hexLeaf(0), "--leaf", hexLeaf(1), "--leaf", hexLeaf(2),
		"--index", "2",
	)
	require.NoError(t, err)

	var stored struct {
		Hasher string `json:"hasher"`
		Root   string `json:"root"`
		Leaf   string `json:"leaf"`
		Proof  struct {
			LeafIndex int `json:"leaf_index"`
			Nodes     []struct {
				Direction string `json:"direction"`
			} `json:"nodes"`
		} `json:"proof"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	assert.Equal(t, "sha3-256", stored.Hasher)
	assert.Equal(t, "817f663efb053557e8663c723d3dd1badbce7124732a55cd1f4fcbc789731fe2", stored.Root)
	assert.Equal(t, hexLeaf(2), stored.Leaf)
	assert.Equal(t, 2, stored.Proof.LeafIndex)
	require.Len(t, stored.Proof.Nodes, 2)
	assert.Equal(t, "left", stored.Proof.Nodes[0].Direction)
	assert.Equal(t, "right", stored.Proof.Nodes[1].Direction)

	path := filepath.Join(t.TempDir(), "proof.json")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))

	out, err = run(t, "verify", "--proof", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: leaf 2")

	_, err = run(t, "verify", "--proof", path, "--leaf", hexLeaf(7))
	require.Error(t, err)
	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())

	_, err = run(t, "--hasher", "keccak256", "verify", "--proof", path)
	require.Error(t, err)
}

func TestProveCommand_BadInput(t *testing.T) {
	_, err := run(t, "prove", "--leaf", "zz")
	require.Error(t, err)

	_, err = run(t, "prove", "--leaf", hexLeaf(1), "--index", "5")
	require.Error(t, err)

	_, err = run(t, "prove", "--leaf", "abcd")
	require.Error(t, err)
}

func TestVerifyCommand_Stdin(t *testing.T) {
	out, err := run(t, "prove", "--leaf", hexLeaf(4), "--leaf", hexLeaf(5), "--index", "1")
	require.NoError(t, err)

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.Reader = strings.NewReader(out)
	require.NoError(t, app.Run([]string{"bmt", "verify", "--proof", "-"}))
	assert.Contains(t, buf.String(), "ok: leaf 1")
}

func TestBenchCommand(t *testing.T) {
	out, err := run(t, "bench", "--depth", "6", "--verifiers", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "leaves=32")

	_, err = run(t, "bench", "--depth", "0")
	require.Error(t, err)
}
