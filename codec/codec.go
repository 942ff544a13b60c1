// Package codec converts between logical 16-bit vectors and the 64-bit wire
// words carried by the permutation network's data buses.
//
// A wire word holds four consecutive elements. Element j of a word occupies
// bits [16j, 16j+16), so lane 0 is the low half-word and lane 3 the high one.
package codec

import (
	"errors"
	"fmt"
)

const (
	LaneBits     = 16
	LanesPerWord = 4
)

var (
	// ErrUnaligned is returned when a vector length is not a multiple of
	// LanesPerWord.
	ErrUnaligned = errors.New("codec: element count is not a multiple of 4")

	// ErrShortBuffer is returned when a destination cannot hold the result.
	ErrShortBuffer = errors.New("codec: destination buffer too short")
)

// PackWord packs four elements into one wire word.
func PackWord(a, b, c, d uint16) uint64 {
	return uint64(a) | uint64(b)<<16 | uint64(c)<<32 | uint64(d)<<48
}

// Lane extracts element j of a wire word.
func Lane(word uint64, j int) uint16 {
	if j < 0 || j >= LanesPerWord {
		panic(fmt.Sprintf("invalid lane %d", j))
	}

	return uint16(word >> (LaneBits * j))
}

// Pack groups values into len(values)/4 wire words.
func Pack(values []uint16) ([]uint64, error) {
	if len(values)%LanesPerWord != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrUnaligned, len(values))
	}

	words := make([]uint64, len(values)/LanesPerWord)
	packWords(words, values)

	return words, nil
}

// PackInto packs values into dst, which must hold len(values)/4 words.
func PackInto(dst []uint64, values []uint16) error {
	if len(values)%LanesPerWord != 0 {
		return fmt.Errorf("%w: got %d", ErrUnaligned, len(values))
	}

	if len(dst) < len(values)/LanesPerWord {
		return fmt.Errorf("%w: need %d words, have %d",
			ErrShortBuffer, len(values)/LanesPerWord, len(dst))
	}

	packWords(dst, values)

	return nil
}

func packWords(dst []uint64, values []uint16) {
	for i := range len(values) / LanesPerWord {
		var w uint64
		for j := 0; j < LanesPerWord; j++ {
			w |= uint64(values[i*LanesPerWord+j]) << (LaneBits * j)
		}
		dst[i] = w
	}
}

// Unpack expands wire words into 4*len(words) elements.
func Unpack(words []uint64) []uint16 {
	values := make([]uint16, len(words)*LanesPerWord)
	unpackWords(values, words)

	return values
}

// UnpackInto expands words into dst, which must hold 4*len(words) elements.
func UnpackInto(dst []uint16, words []uint64) error {
	if len(dst) < len(words)*LanesPerWord {
		return fmt.Errorf("%w: need %d elements, have %d",
			ErrShortBuffer, len(words)*LanesPerWord, len(dst))
	}

	unpackWords(dst, words)

	return nil
}

func unpackWords(dst []uint16, words []uint64) {
	for i, w := range words {
		for j := 0; j < LanesPerWord; j++ {
			dst[i*LanesPerWord+j] = uint16((w >> (LaneBits * j)) & 0xFFFF)
		}
	}
}
