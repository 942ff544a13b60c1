// Package rtl defines the signal-level interface of the permutation network.
package rtl

// Channel selects which buffer an input beat is written to.
type Channel uint8

const (
	IndexChannel Channel = iota
	ValueChannel
)

// Name returns the name of the channel.
func (c Channel) Name() string {
	switch c {
	case IndexChannel:
		return "Index"
	case ValueChannel:
		return "Value"
	default:
		panic("invalid channel")
	}
}

// Inputs are the pins driven by the harness. The device only reads them.
type Inputs struct {
	Clock   bool
	Reset   bool
	InValid bool

	SelIdxVal Channel
	InData    []uint64
	Addr      uint8

	Mode         uint8
	Permute      bool
	OutReady     bool
	MaskIdxBit   uint16
	RshiftIdxBit uint8
}

// Outputs are the pins driven by the device. OutData belongs to the device
// and is only valid until the next evaluation.
type Outputs struct {
	OutValid bool
	OutData  []uint64
}

// A Device is a clocked permutation network seen from its pins.
type Device interface {
	// Eval lets the device observe the current input pins and settle its
	// outputs. Only the clock driver calls it, once per half edge.
	Eval(in Inputs) Outputs
}
