package passgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	sets := map[string]Charset{
		"all":          DefaultCharset,
		"letters":      {Lower: true, Upper: true},
		"digits only":  {Digits: true},
		"no symbols":   {Lower: true, Upper: true, Digits: true},
		"symbols only": {Symbols: true},
	}
	for name, cs := range sets {
		t.Run(name, func(t *testing.T) {
			alphabet := cs.Alphabet()
			for _, n := range []int{MinLength, 12, DefaultLength, 64, MaxLength} {
				pw, err := Generate(n, cs)
				require.NoError(t, err)
				assert.Len(t, pw, n)
				for _, r := range pw {
					assert.True(t, strings.ContainsRune(alphabet, r), "unexpected %q in %s", r, name)
				}
			}
		})
	}
}

func TestGenerate_ContainsEverySelectedClass(t *testing.T) {
	for i := 0; i < 200; i++ {
		pw, err := Generate(MinLength, DefaultCharset)
		require.NoError(t, err)
		for _, cl := range DefaultCharset.classes() {
			assert.True(t, strings.ContainsAny(pw, cl), "%q misses class %q", pw, cl)
		}
	}
}

func TestGenerate_RejectsBadLength(t *testing.T) {
	for _, n := range []int{-1, 0, 7, 129, 1000} {
		_, err := Generate(n, DefaultCharset)
		assert.ErrorIs(t, err, ErrInvalidLength, "length %d", n)
	}
}

func TestGenerate_RejectsEmptyCharset(t *testing.T) {
	_, err := Generate(DefaultLength, Charset{})
	assert.ErrorIs(t, err, ErrEmptyCharset)
	assert.True(t, Charset{}.Empty())
	assert.False(t, DefaultCharset.Empty())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerate_RandomSourceFailure(t *testing.T) {
	old := randReader
	randReader = failingReader{}
	t.Cleanup(func() { randReader = old })

	_, err := Generate(DefaultLength, DefaultCharset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestGenerate_NotRepeating(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := Generate(DefaultLength, DefaultCharset)
		require.NoError(t, err)
		assert.False(t, seen[pw], "duplicate password %q", pw)
		seen[pw] = true
	}
}
