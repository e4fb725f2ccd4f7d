// Package digest contains the fixed-width hash value shared by trees,
// proofs and the command line tool:
// * Digest is a node or leaf hash with hex text encoding.
package digest
