package harness

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/permnet/util/valgen"
)

// SweepSpec describes the test cases of a codebook sweep.
type SweepSpec struct {
	VectorWidth int
	Codebooks   []int

	IndexPattern valgen.Pattern
	ValuePattern valgen.Pattern
	// ValueRange bounds generated values. Zero uses the vector width.
	ValueRange int

	Transform IndexTransform
	// Repeat is the number of cases per codebook. Zero means one.
	Repeat int
}

// BuildSweep generates the test cases of spec. Indices are drawn inside each
// codebook and shifted left by the transform shift, so that the device's
// index extraction recovers them.
func BuildSweep(spec SweepSpec, rng *rand.Rand) ([]*TestCase, error) {
	valueRange := spec.ValueRange
	if valueRange == 0 {
		valueRange = spec.VectorWidth
	}

	if valueRange <= 0 || valueRange > 1<<16-1 {
		return nil, fmt.Errorf("%w: value range %d does not fit 16 bits",
			ErrInvalidConfig, valueRange)
	}

	repeat := max(spec.Repeat, 1)

	var cases []*TestCase
	for _, cb := range spec.Codebooks {
		if err := checkCodebook(cb, spec.VectorWidth); err != nil {
			return nil, err
		}

		for r := 0; r < repeat; r++ {
			index := valgen.Generate(spec.IndexPattern, rng, uint16(cb), spec.VectorWidth)
			for i := range index {
				index[i] <<= spec.Transform.Shift
			}

			value := valgen.Generate(spec.ValuePattern, rng, uint16(valueRange), spec.VectorWidth)

			name := fmt.Sprintf("cb%d", cb)
			if repeat > 1 {
				name = fmt.Sprintf("cb%d#%d", cb, r)
			}

			tc, err := NewTestCase(name, index, value, cb, spec.Transform)
			if err != nil {
				return nil, err
			}

			cases = append(cases, tc)
		}
	}

	return cases, nil
}
