package digest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Digest
		wantErr bool
	}{
		{"plain", "abcd", Digest{0xab, 0xcd}, false},
		{"prefixed", "0xABCD", Digest{0xab, 0xcd}, false},
		{"empty", "", Digest{}, false},
		{"odd length", "abc", nil, true},
		{"not hex", "zz", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("xyz") })
}

func TestDigest_String(t *testing.T) {
	d := Repeat(0x11, 3)
	assert.Equal(t, "111111", d.String())
	assert.Equal(t, 3, d.Size())
	assert.Equal(t, "111111", d.Short())
	assert.Equal(t, "22222222…", Repeat(0x22, 32).Short())
}

func TestDigest_JSON(t *testing.T) {
	type wrapper struct {
		Root Digest `json:"root"`
	}
	b, err := json.Marshal(wrapper{Root: Digest{0x01, 0xff}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"root":"01ff"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"root":"0x02fe"}`), &w))
	assert.Equal(t, Digest{0x02, 0xfe}, w.Root)

	require.Error(t, json.Unmarshal([]byte(`{"root":"nothex"}`), &w))
}
