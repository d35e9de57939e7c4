package bitpack

import "fmt"

// Register is a streaming counterpart of Packer for callers that see digits
// one at a time, such as text parsers. It is a shift register of 64-bit
// limbs, least significant limb first.
//
// Pushing Digits() digits (most significant first) and then draining gives
// the same bytes as Packer.Pack. Loading bytes and popping gives the digits
// of Packer.Unpack in reverse order.
type Register struct {
	bits  uint
	mask  uint64
	bytes int
	limbs []uint64
}

func NewRegister(bits, packedBytes int) *Register {
	if bits < minBits || bits > maxBits {
		panic(fmt.Sprintf("bitpack: bit width %d outside [%d, %d]", bits, minBits, maxBits))
	}
	if packedBytes <= 0 {
		panic(fmt.Sprintf("bitpack: packed length %d must be positive", packedBytes))
	}
	return &Register{
		bits:  uint(bits),
		mask:  1<<uint(bits) - 1,
		bytes: packedBytes,
		limbs: make([]uint64, (packedBytes*8+63)/64),
	}
}

func (r *Register) Reset() {
	clear(r.limbs)
}

// Push shifts the register left by one digit and inserts d at the bottom.
func (r *Register) Push(d byte) {
	carry := uint64(d) & r.mask
	for i, v := range r.limbs {
		r.limbs[i] = v<<r.bits | carry
		carry = v >> (64 - r.bits)
	}
}

// Pop removes and returns the least significant digit.
func (r *Register) Pop() byte {
	d := byte(r.limbs[0] & r.mask)
	last := len(r.limbs) - 1
	for i := 0; i < last; i++ {
		r.limbs[i] = r.limbs[i]>>r.bits | r.limbs[i+1]<<(64-r.bits)
	}
	r.limbs[last] >>= r.bits
	return d
}

// Load replaces the register contents with the packed bytes in src.
func (r *Register) Load(src []byte) {
	if len(src) != r.bytes {
		panic(fmt.Sprintf("bitpack: load %d bytes, want %d", len(src), r.bytes))
	}
	clear(r.limbs)
	for k := 0; k < r.bytes; k++ {
		r.limbs[k/8] |= uint64(src[r.bytes-1-k]) << (8 * uint(k%8))
	}
}

// Drain writes the low Bytes() bytes of the register to dst and clears it.
func (r *Register) Drain(dst []byte) {
	if len(dst) != r.bytes {
		panic(fmt.Sprintf("bitpack: drain into %d bytes, want %d", len(dst), r.bytes))
	}
	for k := 0; k < r.bytes; k++ {
		dst[r.bytes-1-k] = byte(r.limbs[k/8] >> (8 * uint(k%8)))
	}
	clear(r.limbs)
}

func (r *Register) Bits() int  { return int(r.bits) }
func (r *Register) Bytes() int { return r.bytes }
