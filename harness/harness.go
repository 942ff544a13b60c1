// Package harness drives the load/permute handshake of the permutation
// network and checks every result against the oracle.
//
// A Session owns the device, its input pins and the clock. A Controller runs
// the protocol on a session:
//
//	RESET -> LOAD_INDEX -> LOAD_VALUE -> PERMUTE_WAIT -> PERMUTE_DONE
//
// Vectors wider than one bus transfer are loaded in SegmentCount addressed
// beats per channel. The wait for OutValid is bounded by MaxPermuteTicks; an
// unresponsive device ends the run with a TimeoutError.
package harness

import (
	"errors"
	"fmt"

	"github.com/sarchlab/permnet/codec"
	"github.com/sarchlab/permnet/rtl"
)

// DefaultMaxPermuteTicks bounds the OutValid poll when no bound is set.
const DefaultMaxPermuteTicks = 10000

var (
	// ErrProtocol is wrapped by ProtocolError.
	ErrProtocol = errors.New("harness: protocol violation")

	// ErrDeviceTimeout is wrapped by TimeoutError.
	ErrDeviceTimeout = errors.New("harness: device timeout")

	// ErrVectorWidth is returned when data does not match the configured
	// vector width.
	ErrVectorWidth = errors.New("harness: vector width mismatch")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("harness: invalid config")
)

// ProtocolError reports a step issued in the wrong state.
type ProtocolError struct {
	Op    string
	State State
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("harness: %s is not allowed in state %s", e.Op, e.State)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// TimeoutError reports a device that never raised OutValid.
type TimeoutError struct {
	Ticks        int
	CodebookSize int
	Time         uint64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("harness: device timeout: no OutValid after %d ticks (codebook %d, time %d)",
		e.Ticks, e.CodebookSize, e.Time)
}

func (e *TimeoutError) Unwrap() error {
	return ErrDeviceTimeout
}

// IndexTransform is the index extraction driven on the mask and shift pins.
// The device uses (idx >> Shift) & Mask as the effective index.
type IndexTransform struct {
	Mask  uint16
	Shift uint8
}

// IdentityTransform passes indices through unchanged.
var IdentityTransform = IndexTransform{Mask: 0xFFFF}

// Config parameterizes the protocol.
type Config struct {
	// VectorWidth is the number of 16-bit elements per vector.
	VectorWidth int
	// SegmentCount is the number of addressed beats that load one channel.
	SegmentCount int
	// CodebookSize is used for test cases that do not set their own.
	CodebookSize int
	// MaxPermuteTicks bounds the OutValid poll. Zero selects
	// DefaultMaxPermuteTicks.
	MaxPermuteTicks int
	// ResetPerCase re-asserts reset before every test case. Otherwise only
	// the first case is preceded by a reset.
	ResetPerCase bool
}

// DefaultConfig returns the single-beat 256-element configuration.
func DefaultConfig() Config {
	return Config{
		VectorWidth:     256,
		SegmentCount:    1,
		CodebookSize:    32,
		MaxPermuteTicks: DefaultMaxPermuteTicks,
	}
}

// Words returns the number of wire words per vector.
func (c Config) Words() int {
	return c.VectorWidth / codec.LanesPerWord
}

// BeatWords returns the number of wire words per beat.
func (c Config) BeatWords() int {
	return c.Words() / c.SegmentCount
}

// Validate checks that the vector splits into whole words, beats and
// codebooks.
func (c Config) Validate() error {
	if c.VectorWidth <= 0 || c.VectorWidth%codec.LanesPerWord != 0 {
		return fmt.Errorf("%w: vector width %d is not a positive multiple of %d",
			ErrInvalidConfig, c.VectorWidth, codec.LanesPerWord)
	}

	if c.SegmentCount <= 0 || c.Words()%c.SegmentCount != 0 {
		return fmt.Errorf("%w: %d words cannot be split into %d segments",
			ErrInvalidConfig, c.Words(), c.SegmentCount)
	}

	if c.SegmentCount > 256 {
		return fmt.Errorf("%w: segment count %d exceeds the address width",
			ErrInvalidConfig, c.SegmentCount)
	}

	if c.MaxPermuteTicks < 0 {
		return fmt.Errorf("%w: negative max permute ticks", ErrInvalidConfig)
	}

	if err := checkCodebook(c.CodebookSize, c.VectorWidth); err != nil {
		return err
	}

	return nil
}

func checkCodebook(size, vectorWidth int) error {
	if _, err := rtl.ModeForCodebook(size); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if size > vectorWidth || vectorWidth%size != 0 {
		return fmt.Errorf("%w: codebook %d does not divide vector width %d",
			ErrInvalidConfig, size, vectorWidth)
	}

	return nil
}

func (c Config) maxPermuteTicks() int {
	if c.MaxPermuteTicks == 0 {
		return DefaultMaxPermuteTicks
	}

	return c.MaxPermuteTicks
}
