// Package device provides a behavioral model of the permutation network.
//
// The model answers the pin-level protocol of package rtl with the gather the
// hardware is specified to compute. It does not model the network's internal
// stages, only their latency.
package device

import (
	"math/bits"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/permnet/codec"
	"github.com/sarchlab/permnet/rtl"
)

// HookPosPermuteStart marks when a permute request is latched.
var HookPosPermuteStart = &sim.HookPos{Name: "Permute Start"}

// HookPosPermuteDone marks when the result is put on the output bus.
var HookPosPermuteDone = &sim.HookPos{Name: "Permute Done"}

// PermuteEvent is the hook item of the permute hooks.
type PermuteEvent struct {
	Mode         uint8
	CodebookSize int
	Cycle        uint64
}

type netState struct {
	Index []uint16
	Value []uint16

	Busy      bool
	Countdown int
	Pending   []uint16
	Request   PermuteEvent

	OutValid bool
	OutData  []uint64

	LastClock    bool
	Cycle        uint64
	Permutes     int
	DroppedBeats int
}

// PermNet is the behavioral permutation network.
type PermNet struct {
	*sim.HookableBase

	name         string
	vectorWidth  int
	segmentCount int
	latency      int
	stuck        bool
	corruptLane  int

	state netState
}

// Name returns the name of the network.
func (n *PermNet) Name() string {
	return n.name
}

// VectorWidth returns the number of 16-bit elements per vector.
func (n *PermNet) VectorWidth() int {
	return n.vectorWidth
}

// SegmentCount returns the number of beats that load one channel.
func (n *PermNet) SegmentCount() int {
	return n.segmentCount
}

// BeatWords returns the number of wire words in one input beat.
func (n *PermNet) BeatWords() int {
	return n.vectorWidth / codec.LanesPerWord / n.segmentCount
}

// Permutes returns the number of completed permutations.
func (n *PermNet) Permutes() int {
	return n.state.Permutes
}

// DroppedBeats returns the number of input beats with an invalid address.
func (n *PermNet) DroppedBeats() int {
	return n.state.DroppedBeats
}

// Eval samples the inputs on a rising clock edge and returns the outputs.
func (n *PermNet) Eval(in rtl.Inputs) rtl.Outputs {
	rising := in.Clock && !n.state.LastClock
	n.state.LastClock = in.Clock

	if rising {
		n.state.Cycle++
		n.risingEdge(in)
	}

	return rtl.Outputs{
		OutValid: n.state.OutValid,
		OutData:  n.state.OutData,
	}
}

func (n *PermNet) risingEdge(in rtl.Inputs) {
	if in.Reset {
		n.reset()
		return
	}

	if n.state.OutValid && in.OutReady {
		n.state.OutValid = false
	}

	if in.InValid {
		n.writeBeat(in)
	}

	switch {
	case n.state.Busy:
		n.state.Countdown--
		if n.state.Countdown <= 0 {
			n.complete()
		}
	case in.Permute && !n.state.OutValid:
		n.start(in)
	}
}

func (n *PermNet) reset() {
	clear(n.state.Index)
	clear(n.state.Value)
	clear(n.state.OutData)

	n.state.Busy = false
	n.state.Countdown = 0
	n.state.Pending = nil
	n.state.OutValid = false

	rtl.Trace("PermNet",
		"Behavior", "Reset",
		"Name", n.name,
		"Cycle", n.state.Cycle,
	)
}

func (n *PermNet) writeBeat(in rtl.Inputs) {
	if int(in.Addr) >= n.segmentCount {
		n.state.DroppedBeats++
		rtl.Trace("PermNet",
			"Behavior", "DropBeat",
			"Name", n.name,
			"Addr", in.Addr,
			"Cycle", n.state.Cycle,
		)
		return
	}

	buf := n.state.Index
	if in.SelIdxVal == rtl.ValueChannel {
		buf = n.state.Value
	}

	beatWords := n.BeatWords()
	words := in.InData
	if len(words) > beatWords {
		words = words[:beatWords]
	}

	offset := int(in.Addr) * beatWords * codec.LanesPerWord
	if err := codec.UnpackInto(buf[offset:], words); err != nil {
		panic(err)
	}

	rtl.Trace("PermNet",
		"Behavior", "Load",
		"Name", n.name,
		"Channel", in.SelIdxVal.Name(),
		"Addr", in.Addr,
		"Words", len(words),
		"Cycle", n.state.Cycle,
	)
}

func (n *PermNet) start(in rtl.Inputs) {
	codebook := rtl.CodebookForMode(in.Mode, n.vectorWidth)

	n.state.Pending = n.gather(codebook, in.MaskIdxBit, in.RshiftIdxBit)
	n.state.Busy = true
	n.state.Countdown = n.stages(codebook)
	n.state.Request = PermuteEvent{
		Mode:         in.Mode,
		CodebookSize: codebook,
		Cycle:        n.state.Cycle,
	}

	n.InvokeHook(sim.HookCtx{
		Domain: n,
		Pos:    HookPosPermuteStart,
		Item:   n.state.Request,
	})

	rtl.Trace("PermNet",
		"Behavior", "PermuteStart",
		"Name", n.name,
		"Mode", in.Mode,
		"Codebook", codebook,
		"Stages", n.state.Countdown,
		"Cycle", n.state.Cycle,
	)
}

func (n *PermNet) stages(codebook int) int {
	if n.latency > 0 {
		return n.latency
	}

	return max(1, bits.Len(uint(codebook))-1)
}

func (n *PermNet) gather(codebook int, mask uint16, shift uint8) []uint16 {
	out := make([]uint16, n.vectorWidth)
	for i := range out {
		idx := int((n.state.Index[i]>>shift)&mask) % codebook
		base := codebook * (i / codebook)
		out[i] = n.state.Value[base+idx]
	}

	if n.corruptLane >= 0 && n.corruptLane < len(out) {
		out[n.corruptLane] ^= 1
	}

	return out
}

func (n *PermNet) complete() {
	n.state.Busy = false

	if n.stuck {
		return
	}

	if err := codec.PackInto(n.state.OutData, n.state.Pending); err != nil {
		panic(err)
	}

	n.state.Pending = nil
	n.state.OutValid = true
	n.state.Permutes++

	done := n.state.Request
	done.Cycle = n.state.Cycle
	n.InvokeHook(sim.HookCtx{
		Domain: n,
		Pos:    HookPosPermuteDone,
		Item:   done,
	})

	rtl.Trace("PermNet",
		"Behavior", "PermuteDone",
		"Name", n.name,
		"Codebook", done.CodebookSize,
		"Cycle", n.state.Cycle,
	)
}
