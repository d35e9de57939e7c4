// Package nanoid generates and parses Nano ID style identifiers: strings
// of uniformly random characters from a fixed alphabet. Ids are stored in
// binary, each character taking the minimum number of bits its alphabet
// needs.
package nanoid

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"

	"github.com/rustyeddy/sortid/bitpack"
	"github.com/rustyeddy/sortid/random"
)

var (
	ErrInvalidString   = errors.New("nanoid: invalid string")
	ErrInvalidAlphabet = errors.New("nanoid: invalid alphabet")
	ErrInvalidBytes    = errors.New("nanoid: invalid bytes")
)

const (
	minAlphabet = 2
	maxAlphabet = 128
)

const invalid = 0xff

// Format describes one alphabet and id length. A Format is immutable and
// safe for concurrent use.
type Format struct {
	alphabet string
	decoding [256]byte
	length   int
	bits     int
	packer   bitpack.Packer
	lead     int  // leading digits the packer emits beyond length
	topMask  byte // usable bits of the first packed byte
}

// NewFormat builds a Format for ids of length characters drawn from
// alphabet. The alphabet must hold between 2 and 128 distinct bytes.
func NewFormat(alphabet string, length int) (*Format, error) {
	if len(alphabet) < minAlphabet || len(alphabet) > maxAlphabet {
		return nil, fmt.Errorf("%w: %d characters, want %d to %d",
			ErrInvalidAlphabet, len(alphabet), minAlphabet, maxAlphabet)
	}
	if length <= 0 {
		return nil, fmt.Errorf("nanoid: length %d must be positive", length)
	}

	f := &Format{alphabet: alphabet, length: length}
	for i := range f.decoding {
		f.decoding[i] = invalid
	}
	for i := range len(alphabet) {
		c := alphabet[i]
		if f.decoding[c] != invalid {
			return nil, fmt.Errorf("%w: %q repeats", ErrInvalidAlphabet, c)
		}
		f.decoding[c] = byte(i)
	}

	f.bits = max(bits.Len(uint(len(alphabet)-1)), 2)
	used := length * f.bits
	size := (used + 7) / 8
	f.packer = bitpack.New(f.bits, size)
	f.lead = f.packer.Digits() - length
	f.topMask = byte(0xff >> (size*8 - used))
	return f, nil
}

func MustFormat(alphabet string, length int) *Format {
	f, err := NewFormat(alphabet, length)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Format) Alphabet() string { return f.alphabet }

// Len returns the number of characters in an id.
func (f *Format) Len() int { return f.length }

// Size returns the number of bytes in the binary form of an id.
func (f *Format) Size() int { return f.packer.Bytes() }

// Generate fills dst, which must be Size() bytes, with a new random id.
func (f *Format) Generate(dst []byte, src random.Source) {
	digits := make([]byte, f.packer.Digits())
	r := rand.New(src)
	n := uint64(len(f.alphabet))
	for i := f.lead; i < len(digits); i++ {
		digits[i] = byte(r.Uint64N(n))
	}
	f.packer.Pack(dst, digits)
}

// Encode returns the text form of the binary id in src.
func (f *Format) Encode(src []byte) string {
	digits := make([]byte, f.packer.Digits())
	f.packer.Unpack(digits, src)
	out := digits[f.lead:]
	for i, d := range out {
		// Values past the alphabet only come from unvalidated bytes.
		if int(d) >= len(f.alphabet) {
			d = byte(len(f.alphabet) - 1)
		}
		out[i] = f.alphabet[d]
	}
	return string(out)
}

// Decode writes the binary form of s into dst, which must be Size() bytes.
func (f *Format) Decode(dst []byte, s string) error {
	if len(s) != f.length {
		return fmt.Errorf("parse %q: %w", s, ErrInvalidString)
	}
	digits := make([]byte, f.packer.Digits())
	for i := range len(s) {
		d := f.decoding[s[i]]
		if d == invalid {
			return fmt.Errorf("parse %q: %w", s, ErrInvalidString)
		}
		digits[f.lead+i] = d
	}
	f.packer.Pack(dst, digits)
	return nil
}

// Valid reports whether b is the binary form of some id: unused high bits
// are clear and every character is inside the alphabet.
func (f *Format) Valid(b []byte) bool {
	if len(b) != f.Size() || b[0]&^f.topMask != 0 {
		return false
	}
	if len(f.alphabet) == 1<<f.bits {
		return true
	}
	digits := make([]byte, f.packer.Digits())
	f.packer.Unpack(digits, b)
	for _, d := range digits[f.lead:] {
		if int(d) >= len(f.alphabet) {
			return false
		}
	}
	return true
}
