package rtl

import (
	"fmt"
	"math/bits"
)

const (
	// MinCodebookSize is the codebook selected by mode 1. Mode m selects
	// MinCodebookSize << (m-1).
	MinCodebookSize = 4

	// MaxMode is the largest mode the network decodes.
	MaxMode = 12
)

// ModeForCodebook returns the mode that selects the given codebook size.
func ModeForCodebook(size int) (uint8, error) {
	if size < MinCodebookSize || bits.OnesCount(uint(size)) != 1 {
		return 0, fmt.Errorf("codebook size %d is not a power of two >= %d",
			size, MinCodebookSize)
	}

	mode := bits.TrailingZeros(uint(size)) - bits.TrailingZeros(MinCodebookSize) + 1
	if mode > MaxMode {
		return 0, fmt.Errorf("codebook size %d exceeds mode %d", size, MaxMode)
	}

	return uint8(mode), nil
}

// CodebookForMode returns the codebook size selected by mode. Mode 0 treats
// the whole vector as one codebook.
func CodebookForMode(mode uint8, vectorWidth int) int {
	if mode == 0 || mode > MaxMode {
		return vectorWidth
	}

	size := MinCodebookSize << (mode - 1)
	if size > vectorWidth {
		return vectorWidth
	}

	return size
}
