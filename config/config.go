// Package config loads sweep configurations and builds the platforms that
// run them.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/permnet/device"
	"github.com/sarchlab/permnet/harness"
	"github.com/sarchlab/permnet/rtl"
	"github.com/sarchlab/permnet/util/valgen"
)

// ErrInvalidSweep is returned when a sweep configuration cannot be run.
var ErrInvalidSweep = errors.New("config: invalid sweep")

// DeviceFaults configures the behavioral network.
type DeviceFaults struct {
	// Latency fixes the cycles per permutation. Zero derives it from the
	// codebook.
	Latency     int  `yaml:"latency"`
	Stuck       bool `yaml:"stuck"`
	CorruptLane int  `yaml:"corrupt_lane"`
}

// Sweep is the file format of a codebook sweep.
type Sweep struct {
	VectorWidth  int   `yaml:"vector_width"`
	SegmentCount int   `yaml:"segment_count"`
	Codebooks    []int `yaml:"codebooks"`

	IndexPattern string `yaml:"index_pattern"`
	ValuePattern string `yaml:"value_pattern"`
	ValueRange   int    `yaml:"value_range"`
	Seed         int64  `yaml:"seed"`

	MaxPermuteTicks int    `yaml:"max_permute_ticks"`
	ResetPerCase    bool   `yaml:"reset_per_case"`
	IndexMask       uint16 `yaml:"index_mask"`
	IndexShift      uint8  `yaml:"index_shift"`
	FailFast        bool   `yaml:"fail_fast"`

	Device DeviceFaults `yaml:"device"`
}

// Default returns the 256-element sweep over codebooks 4 to 256 with a
// reversed index and a sequential value.
func Default() *Sweep {
	return &Sweep{
		VectorWidth:     256,
		SegmentCount:    1,
		Codebooks:       []int{4, 8, 16, 32, 64, 128, 256},
		IndexPattern:    valgen.PatternReversed.String(),
		ValuePattern:    valgen.PatternSequential.String(),
		Seed:            1,
		MaxPermuteTicks: harness.DefaultMaxPermuteTicks,
		IndexMask:       0xFFFF,
		Device:          DeviceFaults{CorruptLane: -1},
	}
}

// Load reads a sweep from a YAML file. Fields missing from the file keep
// their default values.
func Load(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep config: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Parse decodes and validates a YAML sweep.
func Parse(data []byte) (*Sweep, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse sweep config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the sweep against the shape of the network.
func (s *Sweep) Validate() error {
	if len(s.Codebooks) == 0 {
		return fmt.Errorf("%w: no codebooks", ErrInvalidSweep)
	}

	for _, p := range []string{s.IndexPattern, s.ValuePattern} {
		if _, err := valgen.ParsePattern(p); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSweep, err)
		}
	}

	if s.ValueRange < 0 {
		return fmt.Errorf("%w: value range %d", ErrInvalidSweep, s.ValueRange)
	}

	if r := s.EffectiveValueRange(); r > 1<<16-1 {
		return fmt.Errorf("%w: value range %d does not fit 16 bits, set value_range",
			ErrInvalidSweep, r)
	}

	if s.IndexShift >= 16 {
		return fmt.Errorf("%w: index shift %d", ErrInvalidSweep, s.IndexShift)
	}

	if s.Device.Latency < 0 {
		return fmt.Errorf("%w: negative device latency", ErrInvalidSweep)
	}

	for _, cb := range s.Codebooks {
		if err := s.HarnessConfig(cb).Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSweep, err)
		}

		if s.IndexShift > 0 && cb<<s.IndexShift > 1<<16 {
			return fmt.Errorf("%w: codebook %d shifted by %d overflows 16 bits",
				ErrInvalidSweep, cb, s.IndexShift)
		}
	}

	return nil
}

// EffectiveValueRange returns the bound of generated values. A zero value
// range uses the vector width.
func (s *Sweep) EffectiveValueRange() int {
	if s.ValueRange == 0 {
		return s.VectorWidth
	}

	return s.ValueRange
}

// HarnessConfig returns the controller configuration for the given codebook.
func (s *Sweep) HarnessConfig(codebook int) harness.Config {
	return harness.Config{
		VectorWidth:     s.VectorWidth,
		SegmentCount:    s.SegmentCount,
		CodebookSize:    codebook,
		MaxPermuteTicks: s.MaxPermuteTicks,
		ResetPerCase:    s.ResetPerCase,
	}
}

// Transform returns the index extraction driven on every permute.
func (s *Sweep) Transform() harness.IndexTransform {
	return harness.IndexTransform{Mask: s.IndexMask, Shift: s.IndexShift}
}

// SweepSpec returns the case generation parameters. The sweep must be valid.
func (s *Sweep) SweepSpec() harness.SweepSpec {
	idx, err := valgen.ParsePattern(s.IndexPattern)
	if err != nil {
		panic(err)
	}

	val, err := valgen.ParsePattern(s.ValuePattern)
	if err != nil {
		panic(err)
	}

	return harness.SweepSpec{
		VectorWidth:  s.VectorWidth,
		Codebooks:    s.Codebooks,
		IndexPattern: idx,
		ValuePattern: val,
		ValueRange:   s.ValueRange,
		Transform:    s.Transform(),
	}
}

// Modes returns the mode driven for every codebook of the sweep.
func (s *Sweep) Modes() []uint8 {
	modes := make([]uint8, 0, len(s.Codebooks))
	for _, cb := range s.Codebooks {
		mode, err := rtl.ModeForCodebook(cb)
		if err != nil {
			panic(err)
		}

		modes = append(modes, mode)
	}

	return modes
}

// DeviceBuilder returns a builder of the network the sweep runs on.
func DeviceBuilder(s *Sweep) device.Builder {
	b := device.NewBuilder().
		WithVectorWidth(s.VectorWidth).
		WithSegmentCount(s.SegmentCount).
		WithLatency(s.Device.Latency).
		WithCorruptLane(s.Device.CorruptLane)

	if s.Device.Stuck {
		b = b.WithStuckOutValid()
	}

	return b
}
