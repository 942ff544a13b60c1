// Some helpers using closures to generate stimulus values
package valgen

import (
	"fmt"
	"math/rand"
	"strings"
)

// Pattern names how a stimulus vector is generated.
type Pattern int

const (
	PatternRandom Pattern = iota
	PatternSequential
	PatternReversed
)

// String returns the name used in configuration files.
func (p Pattern) String() string {
	switch p {
	case PatternRandom:
		return "random"
	case PatternSequential:
		return "sequential"
	case PatternReversed:
		return "reversed"
	default:
		panic("invalid pattern")
	}
}

// ParsePattern parses a pattern name.
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "rand":
		return PatternRandom, nil
	case "sequential", "seq":
		return PatternSequential, nil
	case "reversed", "reverse", "rev":
		return PatternReversed, nil
	default:
		return 0, fmt.Errorf("unknown pattern %q", s)
	}
}

// MakeUniformGen returns a generator of values uniform in [0, rangeN). A nil
// rng draws from the global source.
func MakeUniformGen(rng *rand.Rand, rangeN uint16) func() uint16 {
	rangeMustBePositive(rangeN)

	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}

	return func() uint16 {
		return uint16(intn(int(rangeN)))
	}
}

// MakeSequentialGen returns a generator yielding i mod rangeN for the i-th
// call, or rangeN-1-(i mod rangeN) when reversed.
func MakeSequentialGen(rangeN uint16, reverse bool) func() uint16 {
	rangeMustBePositive(rangeN)

	i := 0
	return func() uint16 {
		v := uint16(i % int(rangeN))
		i++
		if reverse {
			return rangeN - 1 - v
		}
		return v
	}
}

// Fill draws count values from gen.
func Fill(gen func() uint16, count int) []uint16 {
	data := make([]uint16, count)
	for i := range data {
		data[i] = gen()
	}

	return data
}

// RandomUint16 returns count values uniform in [0, rangeN).
func RandomUint16(rng *rand.Rand, rangeN uint16, count int) []uint16 {
	return Fill(MakeUniformGen(rng, rangeN), count)
}

// SequentialUint16 returns the wrapping sequence 0..rangeN-1, or its reverse.
func SequentialUint16(rangeN uint16, count int, reverse bool) []uint16 {
	return Fill(MakeSequentialGen(rangeN, reverse), count)
}

// Generate fills count values following p.
func Generate(p Pattern, rng *rand.Rand, rangeN uint16, count int) []uint16 {
	switch p {
	case PatternRandom:
		return RandomUint16(rng, rangeN, count)
	case PatternSequential:
		return SequentialUint16(rangeN, count, false)
	case PatternReversed:
		return SequentialUint16(rangeN, count, true)
	default:
		panic("invalid pattern")
	}
}

func rangeMustBePositive(rangeN uint16) {
	if rangeN == 0 {
		panic("generator range must be positive")
	}
}
