// Package cuid2 generates and parses Cuid2 identifiers: 24 lower case
// characters, a letter followed by 23 base36 digits taken from a SHA3-512
// digest of the time, random salt, a counter and a process fingerprint.
//
// The binary form is 16 bytes: the letter index (0-25) followed by the
// 120-bit big-endian value of the digits.
package cuid2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/rustyeddy/sortid/lifecycle"
	"github.com/rustyeddy/sortid/random"
)

type CUID2 [16]byte

const (
	// EncodedSize is the length of the text form.
	EncodedSize = 24
	digitCount  = EncodedSize - 1
	letters     = 26
)

var (
	ErrInvalidString = errors.New("cuid2: invalid string")
	ErrInvalidBytes  = errors.New("cuid2: invalid bytes")
)

var Max = CUID2{letters - 1, 0x78, 0x1d, 0x7e, 0x5f, 0x7d, 0xc6, 0xf7, 0x01, 0x7e, 0x3f, 0xff, 0xff, 0xff, 0xff, 0xff}

const digits36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// state is the per-process part of the hash input. A forked child starts
// over with a fresh counter and fingerprint.
type state struct {
	counter     atomic.Uint32
	fingerprint [16]byte
}

var process = lifecycle.NewSingleton(func() *state {
	src := random.Default()
	s := &state{}
	s.counter.Store(uint32(src.Uint64()))
	_, _ = src.Read(s.fingerprint[:])
	return s
})

func New() CUID2 {
	return generate(random.Default(), time.Now(), process.Instance())
}

func generate(src random.Source, now time.Time, st *state) CUID2 {
	var id CUID2
	id[0] = byte(random.Uint64N(src, letters))

	var salt [16]byte
	_, _ = src.Read(salt[:])

	var scratch [8]byte
	h := sha3.New512()
	binary.LittleEndian.PutUint64(scratch[:], uint64(now.UnixNano()))
	h.Write(scratch[:])
	h.Write(salt[:])
	binary.LittleEndian.PutUint32(scratch[:4], st.counter.Add(1)-1)
	h.Write(scratch[:4])
	h.Write(st.fingerprint[:])
	sum := h.Sum(nil)

	in := value{hi: binary.BigEndian.Uint64(sum[1:]), lo: binary.BigEndian.Uint64(sum[9:])}
	var out value
	for range digitCount {
		out.push(in.pop())
	}
	out.put(id[1:])
	return id
}

// value is a 128-bit unsigned integer.
type value struct {
	hi, lo uint64
}

// pop divides v by 36 and returns the remainder.
func (v *value) pop() byte {
	var r uint64
	v.hi, r = v.hi/36, v.hi%36
	v.lo, r = bits.Div64(r, v.lo, 36)
	return byte(r)
}

// push multiplies v by 36 and adds d.
func (v *value) push(d byte) {
	carry, lo := bits.Mul64(v.lo, 36)
	lo, c := bits.Add64(lo, uint64(d), 0)
	v.hi = v.hi*36 + carry + c
	v.lo = lo
}

// put writes the low 120 bits big-endian.
func (v value) put(dst []byte) {
	var hi [8]byte
	binary.BigEndian.PutUint64(hi[:], v.hi)
	copy(dst[:7], hi[1:])
	binary.BigEndian.PutUint64(dst[7:], v.lo)
}

func get(src []byte) value {
	var hi [8]byte
	copy(hi[1:], src[:7])
	return value{hi: binary.BigEndian.Uint64(hi[:]), lo: binary.BigEndian.Uint64(src[7:])}
}

func Parse(s string) (CUID2, error) {
	var id CUID2
	if len(s) != EncodedSize || s[0] < 'a' || s[0] > 'z' {
		return id, fmt.Errorf("parse %q: %w", s, ErrInvalidString)
	}
	id[0] = s[0] - 'a'

	var v value
	for i := 1; i < len(s); i++ {
		d := strings.IndexByte(digits36, s[i])
		if d < 0 {
			return CUID2{}, fmt.Errorf("parse %q: %w", s, ErrInvalidString)
		}
		v.push(byte(d))
	}
	v.put(id[1:])
	return id, nil
}

func MustParse(s string) CUID2 {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes accepts the binary form of an id.
func FromBytes(b []byte) (CUID2, error) {
	var id CUID2
	if len(b) != len(id) {
		return id, ErrInvalidBytes
	}
	copy(id[:], b)
	if !id.valid() {
		return CUID2{}, ErrInvalidBytes
	}
	return id, nil
}

func (id CUID2) valid() bool {
	return id[0] < letters && bytes.Compare(id[1:], Max[1:]) <= 0
}

func (id CUID2) String() string {
	var buf [EncodedSize]byte
	buf[0] = 'a' + id[0]%letters
	v := get(id[1:])
	for i := EncodedSize - 1; i > 0; i-- {
		buf[i] = digits36[v.pop()]
	}
	return string(buf[:])
}

func (id CUID2) Compare(o CUID2) int {
	return bytes.Compare(id[:], o[:])
}

func (id CUID2) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *CUID2) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
