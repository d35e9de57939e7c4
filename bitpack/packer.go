// Package bitpack converts between packed byte arrays and arrays of narrow
// digits, each digit holding between 2 and 7 bits.
//
// Digits are big-endian: digit 0 is the most significant. When the digit
// count times the bit width exceeds the packed bit count, the surplus bits
// sit in the high end of digit 0 and are always zero after Unpack.
package bitpack

import "fmt"

const (
	minBits = 2
	maxBits = 7
)

// Packer is a fixed-size codec for one (bit width, packed length) pair.
// The zero value is not usable; construct one with New.
type Packer struct {
	t      *table
	bytes  int
	digits int
}

// New returns a Packer for digits of the given bit width packed into
// packedBytes bytes. It panics when bits is outside [2, 7] or packedBytes
// is not positive.
func New(bits, packedBytes int) Packer {
	if bits < minBits || bits > maxBits {
		panic(fmt.Sprintf("bitpack: bit width %d outside [%d, %d]", bits, minBits, maxBits))
	}
	if packedBytes <= 0 {
		panic(fmt.Sprintf("bitpack: packed length %d must be positive", packedBytes))
	}
	return Packer{
		t:      tables[bits],
		bytes:  packedBytes,
		digits: DigitCount(bits, packedBytes),
	}
}

// DigitCount returns ceil(packedBytes*8 / bits).
func DigitCount(bits, packedBytes int) int {
	return (packedBytes*8 + bits - 1) / bits
}

func (p Packer) Bits() int   { return int(p.t.bits) }
func (p Packer) Bytes() int  { return p.bytes }
func (p Packer) Digits() int { return p.digits }

// Padding returns the number of always-zero high bits in digit 0.
func (p Packer) Padding() int {
	return p.digits*int(p.t.bits) - p.bytes*8
}

// Pack writes the Bytes() byte encoding of the Digits() digits in src to dst.
// Digit bits above the bit width, and padding bits of digit 0, are ignored.
func (p Packer) Pack(dst, src []byte) {
	if len(src) != p.digits || len(dst) != p.bytes {
		panic(fmt.Sprintf("bitpack: pack %d digits into %d bytes, want %d into %d",
			len(src), len(dst), p.digits, p.bytes))
	}

	t := p.t
	phase, base := 0, 0
	for k := 0; k < p.bytes; k++ {
		s := &t.pack[phase]
		var v uint
		for _, pt := range s.parts[:s.n] {
			i := base + int(pt.index)
			if i >= p.digits {
				break
			}
			v |= shift(uint(src[p.digits-1-i])&t.mask, pt.shift)
		}
		dst[p.bytes-1-k] = byte(v)

		if phase++; phase == t.bytesPerPeriod {
			phase = 0
			base += t.digitsPerPeriod
		}
	}
}

// Unpack writes the Digits() digits encoded by the Bytes() bytes in src to dst.
func (p Packer) Unpack(dst, src []byte) {
	if len(src) != p.bytes || len(dst) != p.digits {
		panic(fmt.Sprintf("bitpack: unpack %d bytes into %d digits, want %d into %d",
			len(src), len(dst), p.bytes, p.digits))
	}

	t := p.t
	phase, base := 0, 0
	for i := 0; i < p.digits; i++ {
		s := &t.unpack[phase]
		var v uint
		for _, pt := range s.parts[:s.n] {
			j := base + int(pt.index)
			if j >= p.bytes {
				break
			}
			v |= shift(uint(src[p.bytes-1-j]), pt.shift)
		}
		dst[p.digits-1-i] = byte(v & t.mask)

		if phase++; phase == t.digitsPerPeriod {
			phase = 0
			base += t.bytesPerPeriod
		}
	}
}
