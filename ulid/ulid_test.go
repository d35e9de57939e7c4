package ulid

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	oklog "github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sortid/clock"
	"github.com/rustyeddy/sortid/internal/logging"
	"github.com/rustyeddy/sortid/lifecycle"
	"github.com/rustyeddy/sortid/persist"
	"github.com/rustyeddy/sortid/random"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testOptions(c clock.Clock) []clock.Option {
	return []clock.Option{
		clock.WithClock(c),
		clock.WithResolution(time.Millisecond),
		clock.WithRandom(random.NewSeeded([32]byte{7})),
		clock.WithLogger(logging.Nop()),
	}
}

func mustHex(t *testing.T, s string) ULID {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	var u ULID
	copy(u[:], b)
	return u
}

func TestParse(t *testing.T) {
	want := mustHex(t, "01563df36481f7bdef7bdef7bdef7bde")

	tests := []struct {
		name string
		in   string
		err  error
	}{
		{"canonical", "01ARYZ6S41YYYYYYYYYYYYYYYY", nil},
		{"lower", "01aryz6s41yyyyyyyyyyyyyyyy", nil},
		{"mixed", "01ArYz6S41yYyYyYyYyYyYyYyY", nil},
		{"o for zero", "O1ARYZ6S41YYYYYYYYYYYYYYYY", nil},
		{"i for one", "0IARYZ6S41YYYYYYYYYYYYYYYY", nil},
		{"l for one", "0lARYZ6S41YYYYYYYYYYYYYYYY", nil},
		{"short", "01ARYZ6S41YYYYYYYYYYYYYYY", ErrInvalidString},
		{"long", "01ARYZ6S41YYYYYYYYYYYYYYYYY", ErrInvalidString},
		{"u is not a digit", "01ARYZ6S41YYYYYYYYYYYYYYYU", ErrInvalidString},
		{"punctuation", "01ARYZ6S41YYYYYYYYYYYYYYY-", ErrInvalidString},
		{"overflow", "81ARYZ6S41YYYYYYYYYYYYYYYY", ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	u := mustHex(t, "01563df36481f7bdef7bdef7bdef7bde")
	assert.Equal(t, "01ARYZ6S41YYYYYYYYYYYYYYYY", u.String())
	assert.Equal(t, "01aryz6s41yyyyyyyyyyyyyyyy", u.Lower())

	assert.Equal(t, "7ZZZZZZZZZZZZZZZZZZZZZZZZZ", Max.String())
	assert.Equal(t, Max, MustParse("7zzzzzzzzzzzzzzzzzzzzzzzzz"))
	assert.Equal(t, strings.Repeat("0", EncodedSize), ULID{}.String())
	assert.True(t, ULID{}.IsZero())
}

func TestOklogInterop(t *testing.T) {
	for range 100 {
		o := oklog.Make()
		u := FromOklog(o)
		assert.Equal(t, o.String(), u.String())
		assert.Equal(t, o.Time(), u.Timestamp())
		assert.Equal(t, o, u.Oklog())

		back, err := Parse(o.String())
		require.NoError(t, err)
		assert.Equal(t, u, back)

		viaOklog, err := oklog.ParseStrict(u.Lower())
		require.NoError(t, err)
		assert.Equal(t, o, viaOklog)
	}
}

func TestText(t *testing.T) {
	u, err := New()
	require.NoError(t, err)

	b, err := u.MarshalText()
	require.NoError(t, err)
	var back ULID
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, u, back)
	assert.Error(t, back.UnmarshalText([]byte("x")))
}

func TestNew(t *testing.T) {
	before := time.Now().Add(-time.Second)
	prev, err := New()
	require.NoError(t, err)
	assert.True(t, prev.Time().After(before))

	for range 2000 {
		u, err := New()
		require.NoError(t, err)
		require.Equal(t, 1, u.Compare(prev), "%s after %s", u, prev)
		require.Less(t, prev.String(), u.String())
		prev = u
	}
}

func TestFromReading(t *testing.T) {
	r := clock.Reading{Variant: clock.ULID, Time: 1469918176385, TailHigh: 0xf7bd, TailLow: 0xef7bdef7bdef7bde}
	assert.Equal(t, "01ARYZ6S41YYYYYYYYYYYYYYYY", fromReading(r).String())
	assert.Equal(t, time.UnixMilli(1469918176385), fromReading(r).Time())
}

func TestGeneratorIncrementsWithinMillisecond(t *testing.T) {
	c := fixedClock{t: time.UnixMilli(1469918176385)}
	g := NewGenerator(testOptions(c)...)
	defer g.Close()

	prev, err := g.New()
	require.NoError(t, err)
	for range 100 {
		u, err := g.New()
		require.NoError(t, err)
		assert.Equal(t, prev.Timestamp(), u.Timestamp())
		assert.Equal(t, 1, u.Compare(prev))
		prev = u
	}
}

func TestGeneratorContinuesFromBackend(t *testing.T) {
	c := fixedClock{t: time.UnixMilli(1469918176385)}
	mem := persist.NewMemory[persist.ULIDData]()
	opts := append(testOptions(c), clock.WithBackend[persist.ULIDData](mem))

	first := NewGenerator(opts...)
	a, err := first.New()
	require.NoError(t, err)
	require.NoError(t, first.Close())
	assert.Equal(t, 0, mem.Refs())

	second := NewGenerator(opts...)
	defer second.Close()
	b, err := second.New()
	require.NoError(t, err)
	assert.Equal(t, 1, b.Compare(a), "%s after %s", b, a)
	assert.Equal(t, a.Timestamp(), b.Timestamp())
}

func TestGeneratorAfterFork(t *testing.T) {
	c := fixedClock{t: time.UnixMilli(1469918176385)}
	mem := persist.NewMemory[persist.ULIDData]()
	g := NewGenerator(append(testOptions(c), clock.WithBackend[persist.ULIDData](mem))...)

	_, err := g.New()
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Refs())

	lifecycle.PrepareFork()
	lifecycle.AfterForkChild()

	// The stale state is closed and a fresh one takes its place.
	_, err = g.New()
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Refs())

	require.NoError(t, g.Close())
	assert.Equal(t, 0, mem.Refs())
}
