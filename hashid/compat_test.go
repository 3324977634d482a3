package hashid_test

import (
	"math"
	"testing"

	hashids "github.com/speps/go-hashids/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundayezeilo/usermgmt/hashid"
)

func newReference(t *testing.T, cfg hashid.Config) *hashids.HashID {
	t.Helper()

	hd := hashids.NewData()
	hd.Salt = cfg.Salt
	hd.MinLength = cfg.MinLength
	if cfg.Alphabet != "" {
		hd.Alphabet = cfg.Alphabet
	}

	h, err := hashids.NewWithData(hd)
	require.NoError(t, err)
	return h
}

// Tokens already issued by other hashids implementations must keep decoding.
func TestCodec_MatchesReferenceImplementation(t *testing.T) {
	configs := []struct {
		name string
		cfg  hashid.Config
	}{
		{name: "service defaults", cfg: hashid.Config{Salt: "test-salt", Alphabet: hashid.DefaultAlphabet, MinLength: hashid.DefaultMinLength}},
		{name: "service alphabet without padding", cfg: hashid.Config{Salt: "test-salt", Alphabet: hashid.DefaultAlphabet}},
		{name: "long salt", cfg: hashid.Config{Salt: "a much longer salt than the alphabet itself, with punctuation!", Alphabet: hashid.DefaultAlphabet, MinLength: 16}},
		{name: "mixed case alphabet", cfg: hashid.Config{Salt: "this is my salt", Alphabet: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890", MinLength: 8}},
		{name: "no separator candidates", cfg: hashid.Config{Salt: "test-salt", Alphabet: "ABDEGJKLMNOPQRVWXYZ", MinLength: 12}},
	}

	ids := []int64{0, 1, 2, 3, 10, 99, 100, 101, 1000, 65535, 1 << 31, 1 << 52, math.MaxInt64}

	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			c, err := hashid.New(tc.cfg)
			require.NoError(t, err)
			ref := newReference(t, tc.cfg)

			for _, id := range ids {
				want, err := ref.EncodeInt64([]int64{id})
				require.NoError(t, err)

				got, err := c.Encode(id)
				require.NoError(t, err)
				assert.Equal(t, want, got, "Encode(%d)", id)

				back, ok := c.Decode(want)
				require.True(t, ok, "Decode(%q)", want)
				assert.Equal(t, id, back)
			}

			many := []int64{5, 0, 42, 1 << 40}
			want, err := ref.EncodeInt64(many)
			require.NoError(t, err)

			got, err := c.EncodeMany(5, 0, 42, 1<<40)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			decoded, err := ref.DecodeInt64WithError(got)
			require.NoError(t, err)
			assert.Equal(t, many, decoded)
		})
	}
}
