package bitpack

// A period is lcm(bits, 8) bits long: the shortest run after which digit and
// byte boundaries line up again. Every step below is expressed relative to
// the least significant end of its period, so the same table serves any
// packed length.

// part is one shift-and-mask contribution to an output byte or digit.
type part struct {
	index int8 // input index counted from the low end of the period
	shift int8 // left shift when positive, right shift when negative
}

type step struct {
	n     uint8
	parts [4]part
}

type table struct {
	bits            uint
	mask            uint
	bytesPerPeriod  int
	digitsPerPeriod int

	// pack has one step per byte, unpack one step per digit, both least
	// significant first.
	pack   []step
	unpack []step
}

var tables [8]*table

func init() {
	for b := minBits; b <= maxBits; b++ {
		tables[b] = buildTable(b)
	}
}

func buildTable(b int) *table {
	period := lcm(b, 8)
	t := &table{
		bits:            uint(b),
		mask:            1<<uint(b) - 1,
		bytesPerPeriod:  period / 8,
		digitsPerPeriod: period / b,
	}

	for j := 0; j < t.bytesPerPeriod; j++ {
		var s step
		lo := 8 * j
		for i := lo / b; i*b < lo+8; i++ {
			s.parts[s.n] = part{index: int8(i), shift: int8(i*b - lo)}
			s.n++
		}
		t.pack = append(t.pack, s)
	}

	for i := 0; i < t.digitsPerPeriod; i++ {
		var s step
		lo := i * b
		for j := lo / 8; j*8 < lo+b; j++ {
			s.parts[s.n] = part{index: int8(j), shift: int8(j*8 - lo)}
			s.n++
		}
		t.unpack = append(t.unpack, s)
	}
	return t
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

func shift(v uint, s int8) uint {
	if s >= 0 {
		return v << uint(s)
	}
	return v >> uint(-s)
}
