package nanoid

import (
	"bytes"

	"github.com/rustyeddy/sortid/random"
)

// DefaultAlphabet is the URL-safe alphabet of the reference Nano ID.
const DefaultAlphabet = "useandom-26T198340PX75pxJACKVERYMINDBUSHWOLF_GQZbfghjklqvwyzrict"

// DefaultLength is the number of characters in a NanoID.
const DefaultLength = 21

// Default is the Format of NanoID: 21 characters of 6 bits in 16 bytes.
var Default = MustFormat(DefaultAlphabet, DefaultLength)

// NanoID is a default-format id in binary form.
type NanoID [16]byte

var (
	Nil NanoID
	Max = NanoID{0x3f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

func New() NanoID {
	return NewFrom(random.Default())
}

// NewFrom draws the id from src.
func NewFrom(src random.Source) NanoID {
	var id NanoID
	Default.Generate(id[:], src)
	return id
}

func Parse(s string) (NanoID, error) {
	var id NanoID
	if err := Default.Decode(id[:], s); err != nil {
		return Nil, err
	}
	return id, nil
}

func MustParse(s string) NanoID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes accepts the binary form of an id, rejecting values with the
// two unused high bits set.
func FromBytes(b []byte) (NanoID, error) {
	var id NanoID
	if !Default.Valid(b) {
		return Nil, ErrInvalidBytes
	}
	copy(id[:], b)
	return id, nil
}

func (id NanoID) String() string {
	return Default.Encode(id[:])
}

func (id NanoID) Compare(o NanoID) int {
	return bytes.Compare(id[:], o[:])
}

func (id NanoID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NanoID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
