// Package uuid generates and parses RFC 9562 UUIDs. Time-based versions
// (1, 6 and 7) draw their timestamps from the clock package, so they stay
// unique and ordered under concurrency, clock steps and, with persistence
// configured, across processes.
package uuid

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	guuid "github.com/google/uuid"
)

// UUID is a 16-byte identifier in network byte order.
type UUID [16]byte

type Version byte

type Variant byte

const (
	VariantNCS Variant = iota
	VariantRFC
	VariantMicrosoft
	VariantFuture
)

var ErrInvalidString = errors.New("uuid: invalid string")

var (
	Nil UUID
	Max = UUID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// Well known namespaces for NewV3 and NewV5.
var (
	NamespaceDNS  = UUID(guuid.NameSpaceDNS)
	NamespaceURL  = UUID(guuid.NameSpaceURL)
	NamespaceOID  = UUID(guuid.NameSpaceOID)
	NamespaceX500 = UUID(guuid.NameSpaceX500)
)

// Parse accepts the canonical 36 character form, optionally wrapped in
// braces. Hex digits may be in either case.
func Parse(s string) (UUID, error) {
	var u UUID
	if len(s) == 38 && s[0] == '{' && s[37] == '}' {
		s = s[1:37]
	}
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return u, fmt.Errorf("parse %q: %w", s, ErrInvalidString)
	}

	src := []byte(s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:36])
	if _, err := hex.Decode(u[:], src); err != nil {
		return Nil, fmt.Errorf("parse %q: %w", s, ErrInvalidString)
	}
	return u, nil
}

func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// FromBytes copies a 16-byte slice.
func FromBytes(b []byte) (UUID, error) {
	var u UUID
	if len(b) != len(u) {
		return u, fmt.Errorf("uuid: %d bytes, want 16", len(b))
	}
	copy(u[:], b)
	return u, nil
}

func (u UUID) String() string {
	var buf [36]byte
	u.encode(buf[:], "0123456789abcdef")
	return string(buf[:])
}

// Upper returns the canonical form with upper case hex digits.
func (u UUID) Upper() string {
	var buf [36]byte
	u.encode(buf[:], "0123456789ABCDEF")
	return string(buf[:])
}

func (u UUID) encode(dst []byte, digits string) {
	j := 0
	for i, b := range u {
		switch i {
		case 4, 6, 8, 10:
			dst[j] = '-'
			j++
		}
		dst[j] = digits[b>>4]
		dst[j+1] = digits[b&0x0f]
		j += 2
	}
}

func (u UUID) Version() Version {
	return Version(u[6] >> 4)
}

func (u UUID) Variant() Variant {
	switch {
	case u[8]&0x80 == 0:
		return VariantNCS
	case u[8]&0xc0 == 0x80:
		return VariantRFC
	case u[8]&0xe0 == 0xc0:
		return VariantMicrosoft
	}
	return VariantFuture
}

func (u UUID) IsNil() bool { return u == Nil }

func (u UUID) Compare(o UUID) int {
	return bytes.Compare(u[:], o[:])
}

func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UUID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

func (u UUID) MarshalBinary() ([]byte, error) {
	return u[:], nil
}

func (u *UUID) UnmarshalBinary(b []byte) error {
	v, err := FromBytes(b)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Google converts to the github.com/google/uuid representation.
func (u UUID) Google() guuid.UUID {
	return guuid.UUID(u)
}

func FromGoogle(g guuid.UUID) UUID {
	return UUID(g)
}
