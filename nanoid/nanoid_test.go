package nanoid

import (
	"encoding/hex"
	"strings"
	"testing"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sortid/random"
)

func TestDefaultFormat(t *testing.T) {
	assert.Equal(t, 16, Default.Size())
	assert.Equal(t, 21, Default.Len())
	assert.Equal(t, strings.Repeat("u", 21), Nil.String())
	assert.Equal(t, strings.Repeat("t", 21), Max.String())
}

func TestParseVector(t *testing.T) {
	id, err := Parse("Uakgb_J5m9g-0JDMbcJqL")
	require.NoError(t, err)
	assert.Equal(t, "250f5cb0b18547372211623830f98dea", hex.EncodeToString(id[:]))
	assert.Equal(t, "Uakgb_J5m9g-0JDMbcJqL", id.String())
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"Uakgb_J5m9g-0JDMbcJq",
		"Uakgb_J5m9g-0JDMbcJqLL",
		"Uakgb_J5m9g-0JDMbcJq!",
		"Uakgb_J5m9g 0JDMbcJqL",
	} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidString, s)
	}
}

func TestNew(t *testing.T) {
	seen := make(map[NanoID]bool)
	for range 1000 {
		id := New()
		require.Equal(t, byte(0), id[0]&0xc0)
		require.False(t, seen[id])
		seen[id] = true

		back, err := Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, back)
	}
}

func TestNewFromIsDeterministic(t *testing.T) {
	a := NewFrom(random.NewSeeded([32]byte{1}))
	b := NewFrom(random.NewSeeded([32]byte{1}))
	assert.Equal(t, a, b)
}

func TestReferenceIDs(t *testing.T) {
	for range 200 {
		s, err := gonanoid.New()
		require.NoError(t, err)
		id, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, id.String())
	}
}

func TestFromBytes(t *testing.T) {
	_, err := FromBytes(Max[:])
	assert.NoError(t, err)

	bad := Max
	bad[0] = 0x40
	_, err = FromBytes(bad[:])
	assert.ErrorIs(t, err, ErrInvalidBytes)

	_, err = FromBytes(Max[:15])
	assert.ErrorIs(t, err, ErrInvalidBytes)
}

func TestText(t *testing.T) {
	id := New()
	b, err := id.MarshalText()
	require.NoError(t, err)
	var back NanoID
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, id, back)
}

func TestNewFormatErrors(t *testing.T) {
	_, err := NewFormat("a", 10)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)
	_, err = NewFormat(strings.Repeat("x", 129), 10)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)
	_, err = NewFormat("abca", 10)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)
	_, err = NewFormat("abc", 0)
	assert.Error(t, err)
}

func TestCustomFormat(t *testing.T) {
	f := MustFormat("abc", 5)
	assert.Equal(t, 2, f.Size())

	b := make([]byte, f.Size())
	require.NoError(t, f.Decode(b, "cabca"))
	assert.Equal(t, []byte{0x02, 0x18}, b)
	assert.Equal(t, "cabca", f.Encode(b))
	assert.True(t, f.Valid(b))

	// Digit value 3 has no character.
	assert.False(t, f.Valid([]byte{0x02, 0x1b}))
	// Bits above the ten in use.
	assert.False(t, f.Valid([]byte{0x06, 0x18}))

	assert.ErrorIs(t, f.Decode(b, "cabcd"), ErrInvalidString)
}

func TestCustomFormatsRoundTrip(t *testing.T) {
	alphabets := []string{
		"01",
		"0123456789",
		"0123456789abcdef",
		"0123456789abcdefghijklmnopqrstuvwxyz",
		"0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz",
		DefaultAlphabet + "!#$%&()*+,./:;<=>?@[]^{|}~" + "\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10\x11\x12\x13\x14\x15\x16\x17\x18\x19\x1a\x1b\x1c\x1d\x1e\x1f\x7f" + "'\"`\\" + "\x80\x81",
	}
	src := random.NewSeeded([32]byte{3})
	for _, alphabet := range alphabets {
		for _, n := range []int{1, 7, 21, 40} {
			f, err := NewFormat(alphabet, n)
			require.NoError(t, err)

			b := make([]byte, f.Size())
			for range 50 {
				f.Generate(b, src)
				require.True(t, f.Valid(b))
				s := f.Encode(b)
				require.Len(t, s, n)

				back := make([]byte, f.Size())
				require.NoError(t, f.Decode(back, s))
				require.Equal(t, b, back)
			}

			ref, err := gonanoid.Generate(alphabet, n)
			if err == nil && len(ref) == n {
				back := make([]byte, f.Size())
				require.NoError(t, f.Decode(back, ref))
				assert.Equal(t, ref, f.Encode(back))
			}
		}
	}
}
