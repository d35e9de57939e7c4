// Package persist stores clock state outside the process so that ids stay
// ordered across restarts and across processes sharing a backend.
//
// A Backend is shared by reference count. Each user acquires its own Handle,
// and every access runs between Lock and Unlock. Load is called at most once
// per handle, before any Store, so handles may cache what they read.
package persist

import "errors"

var (
	ErrClosed      = errors.New("persist: handle closed")
	ErrUnsupported = errors.New("persist: backend not supported on this platform")
)

// UUIDData is the persisted state of a UUID v1, v6 or v7 clock.
type UUIDData struct {
	When       int64 // nanoseconds since the Unix epoch
	Seq        uint16
	Adjustment int32
}

// ULIDData is the persisted state of a ULID clock. The 80-bit random tail is
// split into its high 16 and low 64 bits.
type ULIDData struct {
	When       int64 // nanoseconds since the Unix epoch
	Adjustment int32
	RandomHigh uint16
	RandomLow  uint64
}

// Data is the set of records a backend can hold.
type Data interface {
	UUIDData | ULIDData
}

type Handle[D Data] interface {
	Lock() error
	Unlock() error
	// Load reports false when nothing usable has been stored yet.
	Load(d *D) (bool, error)
	Store(d *D) error
	Close() error
}

type Backend[D Data] interface {
	AddRef()
	SubRef()
	Handle() (Handle[D], error)
}
