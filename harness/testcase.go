package harness

import (
	"fmt"

	"github.com/sarchlab/permnet/verify"
)

// TestCase holds the vectors of one permutation. The oracle is computed when
// the case is created, Output is filled once the handshake completes.
type TestCase struct {
	Name         string
	CodebookSize int
	Transform    IndexTransform

	Index  []uint16
	Value  []uint16
	Oracle []uint16
	Output []uint16
}

// NewTestCase creates a test case and evaluates its oracle. Indices must be
// inside the codebook after the transform is applied.
func NewTestCase(
	name string,
	index, value []uint16,
	codebookSize int,
	xf IndexTransform,
) (*TestCase, error) {
	oracle, err := verify.ComputeGather(
		verify.MaskIndex(index, xf.Mask, xf.Shift), value, codebookSize)
	if err != nil {
		return nil, fmt.Errorf("test case %s: %w", name, err)
	}

	return &TestCase{
		Name:         name,
		CodebookSize: codebookSize,
		Transform:    xf,
		Index:        index,
		Value:        value,
		Oracle:       oracle,
	}, nil
}

// Passed reports whether the decoded output matches the oracle.
func (tc *TestCase) Passed() bool {
	return tc.Output != nil && verify.Compare(tc.Oracle, tc.Output)
}
