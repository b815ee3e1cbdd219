package montecarlo

import (
	"crypto/rand"
	"encoding/binary"
	"math"

	xrand "golang.org/x/exp/rand"
)

// Uniform produces uniform deviates in [0, 1).
type Uniform interface {
	Float64() float64
}

// NormalSource produces standard normal deviates with the Box–Muller
// transform. Each call to Box–Muller yields two independent deviates; the
// second one is cached and returned by the next call.
//
// A NormalSource is not safe for concurrent use. Create one per unit of work.
type NormalSource struct {
	uniform  Uniform
	spare    float64
	hasSpare bool
}

// NewNormalSource returns a source backed by a PCG generator seeded with seed.
func NewNormalSource(seed uint64) *NormalSource {
	return NewNormalSourceFrom(xrand.New(xrand.NewSource(seed)))
}

// NewNormalSourceFrom returns a source drawing its uniforms from u.
func NewNormalSourceFrom(u Uniform) *NormalSource {
	return &NormalSource{uniform: u}
}

// Next returns one standard normal deviate.
func (s *NormalSource) Next() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}
	// 1-U maps [0,1) onto (0,1], keeping log(u1) finite.
	u1 := 1.0 - s.uniform.Float64()
	u2 := 1.0 - s.uniform.Float64()
	radius := math.Sqrt(-2.0 * math.Log(u1))
	theta := 2.0 * math.Pi * u2
	s.spare = radius * math.Sin(theta)
	s.hasSpare = true
	return radius * math.Cos(theta)
}

// NewSeed draws a fresh 64-bit seed from the operating system's entropy pool.
// It never falls back to the wall clock.
func NewSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// DeriveSeed maps a base seed and a stream index to a well-mixed seed with the
// SplitMix64 finalizer. Distinct indices give unrelated streams, and the same
// (base, index) pair always gives the same seed.
func DeriveSeed(base uint64, index int) uint64 {
	z := base + uint64(index+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
