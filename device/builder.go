package device

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/permnet/codec"
)

// Builder can create permutation networks.
type Builder struct {
	vectorWidth  int
	segmentCount int
	latency      int
	stuck        bool
	corruptLane  int
}

// NewBuilder returns a builder for a 256-element, single-beat network.
func NewBuilder() Builder {
	return Builder{
		vectorWidth:  256,
		segmentCount: 1,
		corruptLane:  -1,
	}
}

// WithVectorWidth sets the number of 16-bit elements per vector.
func (b Builder) WithVectorWidth(width int) Builder {
	b.vectorWidth = width
	return b
}

// WithSegmentCount sets the number of beats needed to load one channel.
func (b Builder) WithSegmentCount(count int) Builder {
	b.segmentCount = count
	return b
}

// WithLatency fixes the number of cycles a permutation takes. Zero derives
// it from the codebook size, one cycle per network stage.
func (b Builder) WithLatency(cycles int) Builder {
	b.latency = cycles
	return b
}

// WithStuckOutValid makes the network never raise OutValid.
func (b Builder) WithStuckOutValid() Builder {
	b.stuck = true
	return b
}

// WithCorruptLane flips the low bit of one output element. A negative
// position disables the fault.
func (b Builder) WithCorruptLane(pos int) Builder {
	b.corruptLane = pos
	return b
}

// Build creates a permutation network.
func (b Builder) Build(name string) *PermNet {
	if b.vectorWidth <= 0 || b.vectorWidth%codec.LanesPerWord != 0 {
		panic(fmt.Sprintf("vector width %d is not a positive multiple of %d",
			b.vectorWidth, codec.LanesPerWord))
	}

	words := b.vectorWidth / codec.LanesPerWord
	if b.segmentCount <= 0 || words%b.segmentCount != 0 {
		panic(fmt.Sprintf("%d words cannot be split into %d segments",
			words, b.segmentCount))
	}

	n := &PermNet{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		vectorWidth:  b.vectorWidth,
		segmentCount: b.segmentCount,
		latency:      b.latency,
		stuck:        b.stuck,
		corruptLane:  b.corruptLane,
	}

	n.state = netState{
		Index:   make([]uint16, b.vectorWidth),
		Value:   make([]uint16, b.vectorWidth),
		OutData: make([]uint64, words),
	}

	return n
}
