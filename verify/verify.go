// Package verify provides the golden model and result checking for the
// permutation network.
//
// # Segmented gather
//
// A logical vector of VectorWidth 16-bit elements is split into windows of
// CodebookSize elements. The index at position i addresses an element inside
// the window that contains i:
//
//	base   = CodebookSize * (i / CodebookSize)
//	out[i] = value[base + index[i]]
//
// ComputeGather evaluates this directly from the logical vectors, before and
// independently of any device interaction. Indices must already be inside
// [0, CodebookSize); the oracle reports the first violation instead of
// reading outside the window.
//
// # Checking
//
// Compare is the pass/fail decision for one test case. Mismatches localizes
// differing elements for logging. Report collects CaseResults for a whole run
// and renders them as a table.
package verify

import (
	"errors"
	"fmt"
)

var (
	// ErrCodebookSize is returned when the codebook size does not evenly
	// split the vector.
	ErrCodebookSize = errors.New("verify: invalid codebook size")

	// ErrLengthMismatch is returned when index and value lengths differ.
	ErrLengthMismatch = errors.New("verify: index and value lengths differ")

	// ErrIndexOutOfRange is wrapped by IndexRangeError.
	ErrIndexOutOfRange = errors.New("verify: index outside codebook")
)

// IndexRangeError reports the first index that addresses outside its window.
type IndexRangeError struct {
	Pos          int
	Index        uint16
	CodebookSize int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("verify: index[%d] = %d is outside codebook of size %d",
		e.Pos, e.Index, e.CodebookSize)
}

func (e *IndexRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// ComputeGather returns the expected segmented gather of value by index.
func ComputeGather(index, value []uint16, codebookSize int) ([]uint16, error) {
	if len(index) != len(value) {
		return nil, fmt.Errorf("%w: %d vs %d",
			ErrLengthMismatch, len(index), len(value))
	}

	if codebookSize <= 0 || len(value)%codebookSize != 0 {
		return nil, fmt.Errorf("%w: %d for vector of %d",
			ErrCodebookSize, codebookSize, len(value))
	}

	for i, idx := range index {
		if int(idx) >= codebookSize {
			return nil, &IndexRangeError{
				Pos:          i,
				Index:        idx,
				CodebookSize: codebookSize,
			}
		}
	}

	out := make([]uint16, len(value))
	for i, idx := range index {
		base := codebookSize * (i / codebookSize)
		out[i] = value[base+int(idx)]
	}

	return out, nil
}

// MaskIndex applies the device's index extraction, (idx >> shift) & mask,
// so the oracle sees the same effective indices as the network.
func MaskIndex(index []uint16, mask uint16, shift uint8) []uint16 {
	out := make([]uint16, len(index))
	for i, idx := range index {
		out[i] = (idx >> shift) & mask
	}

	return out
}
