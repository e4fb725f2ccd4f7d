// Package bmttest contains helpers for testing code built on bmt trees:
// a naive recursive root computation to cross check trees against,
// a structural invariant check, and a compliance suite for Hasher
// implementations.
package bmttest
