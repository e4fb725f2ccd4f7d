package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/celestiaorg/bmt/defaulthasher"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bmt",
		Usage: "Build binary Merkle trees and create or check inclusion proofs",
		Description: `Leaves and roots are hex encoded hashes whose width matches the
selected hasher (32 bytes for every built-in hasher).`,
		// exit codes are handled by main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "hasher",
				Usage:   fmt.Sprintf("Node hash function, one of %v", defaulthasher.Names()),
				Value:   defaulthasher.Default,
				EnvVars: []string{"BMT_HASHER"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "root",
				Usage: "Print the root of a tree whose leaves are all equal",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Number of tree levels",
						Value: 20,
					},
					&cli.StringFlag{
						Name:     "leaf",
						Usage:    "Leaf hash (hex)",
						Required: true,
					},
				},
				Action: rootCommand,
			},
			{
				Name:  "prove",
				Usage: "Build a tree from leaves and print the root and a proof for one of them",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "leaf",
						Usage:    "Leaf hash (hex), repeat in leaf order",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "index",
						Usage: "Offset of the leaf to prove",
					},
				},
				Action: proveCommand,
			},
			{
				Name:  "verify",
				Usage: "Check a proof written by the prove command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "proof",
						Usage:    "Path to the proof file, - for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "leaf",
						Usage: "Leaf hash (hex), defaults to the one stored with the proof",
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Trusted root (hex), defaults to the one stored with the proof",
					},
				},
				Action: verifyCommand,
			},
			{
				Name:  "bench",
				Usage: "Build a full tree and verify every leaf's proof in parallel",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Number of tree levels",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "verifiers",
						Usage: "Number of verifying goroutines, 0 for one per CPU",
					},
				},
				Action: benchCommand,
			},
		},
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	if c.Bool("debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
