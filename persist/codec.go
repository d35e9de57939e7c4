package persist

import (
	"encoding"
	"encoding/binary"
	"fmt"
)

// Records are fixed-size big-endian byte strings.
const (
	UUIDRecordSize = 8 + 2 + 4
	ULIDRecordSize = 8 + 4 + 2 + 8
)

func (d UUIDData) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, UUIDRecordSize)
	b = binary.BigEndian.AppendUint64(b, uint64(d.When))
	b = binary.BigEndian.AppendUint16(b, d.Seq)
	b = binary.BigEndian.AppendUint32(b, uint32(d.Adjustment))
	return b, nil
}

func (d *UUIDData) UnmarshalBinary(b []byte) error {
	if len(b) != UUIDRecordSize {
		return fmt.Errorf("uuid clock record: %d bytes, want %d", len(b), UUIDRecordSize)
	}
	d.When = int64(binary.BigEndian.Uint64(b))
	d.Seq = binary.BigEndian.Uint16(b[8:])
	d.Adjustment = int32(binary.BigEndian.Uint32(b[10:]))
	return nil
}

func (d ULIDData) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, ULIDRecordSize)
	b = binary.BigEndian.AppendUint64(b, uint64(d.When))
	b = binary.BigEndian.AppendUint32(b, uint32(d.Adjustment))
	b = binary.BigEndian.AppendUint16(b, d.RandomHigh)
	b = binary.BigEndian.AppendUint64(b, d.RandomLow)
	return b, nil
}

func (d *ULIDData) UnmarshalBinary(b []byte) error {
	if len(b) != ULIDRecordSize {
		return fmt.Errorf("ulid clock record: %d bytes, want %d", len(b), ULIDRecordSize)
	}
	d.When = int64(binary.BigEndian.Uint64(b))
	d.Adjustment = int32(binary.BigEndian.Uint32(b[8:]))
	d.RandomHigh = binary.BigEndian.Uint16(b[12:])
	d.RandomLow = binary.BigEndian.Uint64(b[14:])
	return nil
}

func recordSize[D Data]() int {
	var d D
	switch any(d).(type) {
	case UUIDData:
		return UUIDRecordSize
	default:
		return ULIDRecordSize
	}
}

func encode[D Data](d *D) []byte {
	b, _ := any(*d).(encoding.BinaryMarshaler).MarshalBinary()
	return b
}

func decode[D Data](d *D, b []byte) error {
	return any(d).(encoding.BinaryUnmarshaler).UnmarshalBinary(b)
}
