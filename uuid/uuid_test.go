package uuid

import (
	"bytes"
	"strings"
	"testing"
	"time"

	guuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/sortid/clock"
)

// bytesSource replays fixed bytes.
type bytesSource struct {
	b []byte
}

func (s *bytesSource) Uint64() uint64 { return 0 }

func (s *bytesSource) Read(p []byte) (int, error) {
	n := copy(p, s.b)
	s.b = s.b[n:]
	return n, nil
}

var rfcNode = [6]byte{0x9f, 0x6b, 0xde, 0xce, 0xd8, 0x46}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want UUID
		err  bool
	}{
		{"canonical", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", NamespaceDNS, false},
		{"upper", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", NamespaceDNS, false},
		{"braced", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", NamespaceDNS, false},
		{"nil", "00000000-0000-0000-0000-000000000000", Nil, false},
		{"max", "ffffffff-ffff-ffff-ffff-ffffffffffff", Max, false},
		{"short", "6ba7b810-9dad-11d1-80b4-00c04fd430c", Nil, true},
		{"no dashes", "6ba7b8109dad11d180b400c04fd430c8", Nil, true},
		{"misplaced dash", "6ba7b81-09dad-11d1-80b4-00c04fd430c8", Nil, true},
		{"bad digit", "6ba7b810-9dad-11d1-80b4-00c04fd430cg", Nil, true},
		{"half brace", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8", Nil, true},
		{"empty", "", Nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", NamespaceDNS.String())
	assert.Equal(t, "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", NamespaceDNS.Upper())
	assert.Equal(t, guuid.NameSpaceURL.String(), NamespaceURL.String())
	assert.Equal(t, "ffffffff-ffff-ffff-ffff-ffffffffffff", Max.String())
	assert.True(t, Nil.IsNil())
	assert.Equal(t, -1, Nil.Compare(Max))
	assert.Equal(t, 0, Max.Compare(Max))
}

func TestTextAndBinary(t *testing.T) {
	u := NewV4()
	text, err := u.MarshalText()
	require.NoError(t, err)
	var back UUID
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, u, back)

	raw, err := u.MarshalBinary()
	require.NoError(t, err)
	var fromRaw UUID
	require.NoError(t, fromRaw.UnmarshalBinary(raw))
	assert.Equal(t, u, fromRaw)

	assert.Error(t, fromRaw.UnmarshalBinary(raw[:15]))
	assert.Error(t, back.UnmarshalText([]byte("nope")))
}

func TestGoogleInterop(t *testing.T) {
	g := guuid.New()
	u := FromGoogle(g)
	assert.Equal(t, g.String(), u.String())
	assert.Equal(t, g, u.Google())
}

func TestLayoutV1(t *testing.T) {
	r := clock.Reading{Variant: clock.V1, Time: 0x1ec9414c232ab00, Seq: 0x33c8}
	u := layoutV1(r, rfcNode)
	assert.Equal(t, "c232ab00-9414-11ec-b3c8-9f6bdeced846", u.String())

	g := u.Google()
	assert.Equal(t, guuid.Version(1), g.Version())
	assert.Equal(t, guuid.RFC4122, g.Variant())
	assert.Equal(t, guuid.Time(r.Time), g.Time())
	assert.Equal(t, int(r.Seq), g.ClockSequence())
	assert.Equal(t, rfcNode[:], g.NodeID())
}

func TestLayoutV6(t *testing.T) {
	r := clock.Reading{Variant: clock.V6, Time: 0x1ec9414c232ab00, Seq: 0x33c8}
	u := layoutV6(r, rfcNode)
	assert.Equal(t, "1ec9414c-232a-6b00-b3c8-9f6bdeced846", u.String())
	assert.Equal(t, Version(6), u.Version())
	assert.Equal(t, VariantRFC, u.Variant())
	assert.Equal(t, r.Seq, u.ClockSequence())
	assert.Equal(t, rfcNode, u.Node())
}

func TestLayoutV7(t *testing.T) {
	r := clock.Reading{Variant: clock.V7, Time: 0x017f22e279b0, Extra: 0xcc3, Seq: 0x18c4}
	src := &bytesSource{b: []byte{0xdc, 0x0c, 0x0c, 0x07, 0x39, 0x8f}}
	u := layoutV7(r, src)
	assert.Equal(t, "017f22e2-79b0-7cc3-98c4-dc0c0c07398f", u.String())
	assert.Equal(t, Version(7), u.Version())
	assert.Equal(t, VariantRFC, u.Variant())
}

func TestTime(t *testing.T) {
	want := time.Date(2022, 2, 22, 19, 22, 22, 0, time.UTC)

	v1 := MustParse("c232ab00-9414-11ec-b3c8-9f6bdeced846")
	got, ok := v1.Time()
	require.True(t, ok)
	assert.True(t, want.Equal(got), got)

	v6 := MustParse("1ec9414c-232a-6b00-b3c8-9f6bdeced846")
	got, ok = v6.Time()
	require.True(t, ok)
	assert.True(t, want.Equal(got), got)

	v7 := MustParse("017f22e2-79b0-7cc3-98c4-dc0c0c07398f")
	got, ok = v7.Time()
	require.True(t, ok)
	assert.True(t, want.Equal(got.Truncate(time.Millisecond)), got)
	assert.Equal(t, 797607*time.Nanosecond, got.Sub(want))

	_, ok = NewV4().Time()
	assert.False(t, ok)
}

func TestNewV4(t *testing.T) {
	seen := make(map[UUID]bool)
	for range 1000 {
		u := NewV4()
		require.Equal(t, Version(4), u.Version())
		require.Equal(t, VariantRFC, u.Variant())
		require.False(t, seen[u])
		seen[u] = true
	}
}

func TestNameBased(t *testing.T) {
	// Well known values for "www.example.com" in the DNS namespace.
	assert.Equal(t, "5df41881-3aed-3515-88a7-2f4a814cf09e", NewV3(NamespaceDNS, []byte("www.example.com")).String())
	assert.Equal(t, "2ed6657d-e927-568b-95e1-2665a8aea6a2", NewV5(NamespaceDNS, []byte("www.example.com")).String())
	assert.Equal(t, guuid.NewSHA1(guuid.NameSpaceURL, []byte("x")).String(), NewV5(NamespaceURL, []byte("x")).String())
}

func TestNewTimeBased(t *testing.T) {
	SetNodeID(rfcNode)
	defer SetNodeMode(NodeRandom)

	before := time.Now().Add(-time.Second)
	for _, gen := range []func() (UUID, error){NewV1, NewV6, NewV7} {
		u, err := gen()
		require.NoError(t, err)
		assert.Equal(t, VariantRFC, u.Variant())

		ts, ok := u.Time()
		require.True(t, ok)
		assert.True(t, ts.After(before), ts)
		assert.False(t, ts.After(time.Now().Add(time.Second)), ts)

		if u.Version() != 7 {
			assert.Equal(t, rfcNode, u.Node())
		}
	}
}

func TestSortable(t *testing.T) {
	for _, gen := range []func() (UUID, error){NewV6, NewV7} {
		prev, err := gen()
		require.NoError(t, err)
		for range 2000 {
			u, err := gen()
			require.NoError(t, err)
			require.Equal(t, 1, u.Compare(prev), "%s after %s", u, prev)
			require.Equal(t, 1, strings.Compare(u.String(), prev.String()))
			prev = u
		}
	}
}

func TestGeneratorsConcurrent(t *testing.T) {
	const workers, each = 8, 200

	out := make([][]UUID, workers)
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			gen := NewGenerator()
			defer gen.Close()
			for range each {
				a, err := gen.NewV1()
				if err != nil {
					return err
				}
				b, err := gen.NewV6()
				if err != nil {
					return err
				}
				c, err := gen.NewV7()
				if err != nil {
					return err
				}
				out[w] = append(out[w], a, b, c, gen.NewV4())
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[UUID]bool)
	for _, us := range out {
		for _, u := range us {
			require.False(t, seen[u], "duplicate %s", u)
			seen[u] = true
		}
	}
}

func TestNodeModes(t *testing.T) {
	id := SetNodeMode(NodeRandom)
	assert.Equal(t, id, NodeID())
	assert.Equal(t, byte(0x01), id[0]&0x01)

	other := SetNodeMode(NodeRandom)
	assert.False(t, bytes.Equal(id[:], other[:]))

	sys := SetNodeMode(NodeSystem)
	assert.Equal(t, sys, NodeID())
}
