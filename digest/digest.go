package digest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

type Digest []byte

// Parse decodes a hex string, with or without a 0x prefix.
func Parse(s string) (Digest, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	return b, nil
}

// MustParse is like Parse but panics on malformed input.
// Intended for constants and tests.
func MustParse(s string) Digest {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Repeat returns a digest of size bytes all equal to b.
func Repeat(b byte, size int) Digest {
	return bytes.Repeat([]byte{b}, size)
}

// Equal returns true if d == other, otherwise, false.
func (d Digest) Equal(other []byte) bool {
	return bytes.Equal(d, other)
}

// Size returns the byte size of the digest.
func (d Digest) Size() int {
	return len(d)
}

// String returns the hexadecimal encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d)
}

// Short returns the first four bytes in hex followed by an ellipsis,
// for log lines.
func (d Digest) Short() string {
	if len(d) <= 4 {
		return d.String()
	}
	return hex.EncodeToString(d[:4]) + "…"
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
