// Package ulid generates and parses Universally Unique Lexicographically
// Sortable Identifiers: a 48-bit millisecond timestamp followed by 80
// random bits, written as 26 Crockford base32 digits.
//
// Ids from New are strictly increasing within a process. Inside one
// millisecond the random part is incremented rather than redrawn.
package ulid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	oklog "github.com/oklog/ulid/v2"

	"github.com/rustyeddy/sortid/bitpack"
	"github.com/rustyeddy/sortid/clock"
)

type ULID [16]byte

// EncodedSize is the length of the text form.
const EncodedSize = 26

var (
	ErrInvalidString = errors.New("ulid: invalid string")
	ErrOverflow      = errors.New("ulid: value exceeds 128 bits")
)

var Max = ULID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

const (
	upper = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	lower = "0123456789abcdefghjkmnpqrstvwxyz"
)

const invalid = 0xff

var decoding [256]byte

func init() {
	for i := range decoding {
		decoding[i] = invalid
	}
	for i := range len(upper) {
		decoding[upper[i]] = byte(i)
		decoding[lower[i]] = byte(i)
	}
	for _, c := range "iIlL" {
		decoding[c] = 1
	}
	decoding['o'] = 0
	decoding['O'] = 0
}

var packer = bitpack.New(5, 16)

// New returns the next ULID of the process-wide clock state.
func New() (ULID, error) {
	r, err := clock.Next(clock.ULID)
	if err != nil {
		return ULID{}, err
	}
	return fromReading(r), nil
}

func fromReading(r clock.Reading) ULID {
	var u ULID
	ms := uint64(r.Time)
	binary.BigEndian.PutUint16(u[0:], uint16(ms>>32))
	binary.BigEndian.PutUint32(u[2:], uint32(ms))
	binary.BigEndian.PutUint16(u[6:], r.TailHigh)
	binary.BigEndian.PutUint64(u[8:], r.TailLow)
	return u
}

// Parse decodes 26 Crockford base32 digits in either case. The letters I
// and L read as 1 and O reads as 0.
func Parse(s string) (ULID, error) {
	if len(s) != EncodedSize {
		return ULID{}, fmt.Errorf("parse %q: %w", s, ErrInvalidString)
	}

	reg := bitpack.NewRegister(5, 16)
	for i := range len(s) {
		d := decoding[s[i]]
		if d == invalid {
			return ULID{}, fmt.Errorf("parse %q: %w", s, ErrInvalidString)
		}
		if i == 0 && d > 7 {
			return ULID{}, fmt.Errorf("parse %q: %w", s, ErrOverflow)
		}
		reg.Push(d)
	}

	var u ULID
	reg.Drain(u[:])
	return u, nil
}

func MustParse(s string) ULID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u ULID) String() string {
	return u.encode(upper)
}

func (u ULID) Lower() string {
	return u.encode(lower)
}

func (u ULID) encode(alphabet string) string {
	var digits [EncodedSize]byte
	packer.Unpack(digits[:], u[:])
	for i, d := range digits {
		digits[i] = alphabet[d]
	}
	return string(digits[:])
}

// Timestamp returns milliseconds since the Unix epoch.
func (u ULID) Timestamp() uint64 {
	return uint64(binary.BigEndian.Uint16(u[0:]))<<32 | uint64(binary.BigEndian.Uint32(u[2:]))
}

func (u ULID) Time() time.Time {
	return oklog.Time(u.Timestamp())
}

func (u ULID) IsZero() bool { return u == ULID{} }

func (u ULID) Compare(o ULID) int {
	return bytes.Compare(u[:], o[:])
}

func (u ULID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *ULID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Oklog converts to the github.com/oklog/ulid/v2 representation.
func (u ULID) Oklog() oklog.ULID {
	return oklog.ULID(u)
}

func FromOklog(o oklog.ULID) ULID {
	return ULID(o)
}
