package uuid

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"hash"
	"time"

	guuid "github.com/google/uuid"

	"github.com/rustyeddy/sortid/clock"
	"github.com/rustyeddy/sortid/random"
)

// NewV1 returns a Gregorian time-based UUID carrying the node id.
func NewV1() (UUID, error) {
	r, err := clock.Next(clock.V1)
	if err != nil {
		return Nil, err
	}
	return layoutV1(r, NodeID()), nil
}

// NewV6 returns a field-compatible reordering of version 1 that sorts by
// time.
func NewV6() (UUID, error) {
	r, err := clock.Next(clock.V6)
	if err != nil {
		return Nil, err
	}
	return layoutV6(r, NodeID()), nil
}

// NewV7 returns a Unix time-based UUID with 12 bits of sub-millisecond
// precision and a 14-bit counter.
func NewV7() (UUID, error) {
	r, err := clock.Next(clock.V7)
	if err != nil {
		return Nil, err
	}
	return layoutV7(r, random.Default()), nil
}

func NewV4() UUID {
	return newRandom(random.Default())
}

func NewV3(ns UUID, name []byte) UUID {
	return newHash(md5.New(), ns, name, 3)
}

func NewV5(ns UUID, name []byte) UUID {
	return newHash(sha1.New(), ns, name, 5)
}

func newRandom(src random.Source) UUID {
	var u UUID
	_, _ = src.Read(u[:])
	u[6] = u[6]&0x0f | 0x40
	u[8] = u[8]&0x3f | 0x80
	return u
}

func newHash(h hash.Hash, ns UUID, name []byte, version int) UUID {
	return UUID(guuid.NewHash(h, guuid.UUID(ns), name, version))
}

func layoutV1(r clock.Reading, node [6]byte) UUID {
	var u UUID
	t := uint64(r.Time)
	binary.BigEndian.PutUint32(u[0:], uint32(t))
	binary.BigEndian.PutUint16(u[4:], uint16(t>>32))
	binary.BigEndian.PutUint16(u[6:], uint16(t>>48)&0x0fff|0x1000)
	putSeq(u[8:], r.Seq)
	copy(u[10:], node[:])
	return u
}

func layoutV6(r clock.Reading, node [6]byte) UUID {
	var u UUID
	t := uint64(r.Time)
	binary.BigEndian.PutUint32(u[0:], uint32(t>>28))
	binary.BigEndian.PutUint16(u[4:], uint16(t>>12))
	binary.BigEndian.PutUint16(u[6:], uint16(t)&0x0fff|0x6000)
	putSeq(u[8:], r.Seq)
	copy(u[10:], node[:])
	return u
}

func layoutV7(r clock.Reading, src random.Source) UUID {
	var u UUID
	ms := uint64(r.Time)
	binary.BigEndian.PutUint32(u[0:], uint32(ms>>16))
	binary.BigEndian.PutUint16(u[4:], uint16(ms))
	binary.BigEndian.PutUint16(u[6:], r.Extra&0x0fff|0x7000)
	putSeq(u[8:], r.Seq)
	_, _ = src.Read(u[10:])
	return u
}

func putSeq(b []byte, seq uint16) {
	b[0] = byte(seq>>8)&0x3f | 0x80
	b[1] = byte(seq)
}

// Time returns the timestamp of a version 1, 6 or 7 UUID, and false for
// other versions.
func (u UUID) Time() (time.Time, bool) {
	switch u.Version() {
	case 1:
		t := uint64(binary.BigEndian.Uint32(u[0:])) |
			uint64(binary.BigEndian.Uint16(u[4:]))<<32 |
			uint64(binary.BigEndian.Uint16(u[6:])&0x0fff)<<48
		return gregorian(t), true
	case 6:
		t := uint64(binary.BigEndian.Uint32(u[0:]))<<28 |
			uint64(binary.BigEndian.Uint16(u[4:]))<<12 |
			uint64(binary.BigEndian.Uint16(u[6:])&0x0fff)
		return gregorian(t), true
	case 7:
		ms := uint64(binary.BigEndian.Uint32(u[0:]))<<16 | uint64(binary.BigEndian.Uint16(u[4:]))
		extra := int64(binary.BigEndian.Uint16(u[6:]) & 0x0fff)
		return time.UnixMilli(int64(ms)).Add(time.Duration(extra * 1_000_000 / 4096)), true
	}
	return time.Time{}, false
}

// ClockSequence returns the 14-bit clock sequence of a time-based UUID.
func (u UUID) ClockSequence() uint16 {
	return binary.BigEndian.Uint16(u[8:]) & 0x3fff
}

// Node returns the last six bytes, the node id of versions 1 and 6.
func (u UUID) Node() [6]byte {
	var n [6]byte
	copy(n[:], u[10:])
	return n
}

func gregorian(t uint64) time.Time {
	ticks := int64(t) - clock.GregorianOffset
	return time.Unix(0, 0).Add(time.Duration(ticks) * 100)
}
