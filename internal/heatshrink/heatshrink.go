// Package heatshrink decompresses the LZ-style bit stream used to compress
// individual VNI animation frame planes. It implements only the single
// literal/back-reference protocol vni.cpp's encoder produces; it is not a
// general heatshrink implementation.
package heatshrink

import (
	"errors"

	"github.com/PPUC/libvni/internal/bitio"
)

// ErrBadHeatshrinkCode is returned when a back-reference points before the start of
// the output buffer, or the bit stream runs out in the middle of a code.
var ErrBadHeatshrinkCode = errors.New("heatshrink: back-reference out of range or truncated code")

// Decompress reads flag/literal/back-reference codes from data until a clean
// end of stream (all bytes consumed, with only zero padding bits left in the
// last one) and returns the reconstructed bytes. windowBits and lookaheadBits size the
// back-reference offset and count fields respectively; the VNI format always
// calls this with windowBits=10, lookaheadBits=5.
func Decompress(data []byte, windowBits, lookaheadBits uint) ([]byte, error) {
	r := bitio.NewReader(data)
	out := make([]byte, 0, len(data)*2)

	for {
		if r.AtEOF() {
			return out, nil
		}

		flag, err := r.ReadBits(1)
		if err != nil {
			return nil, ErrBadHeatshrinkCode
		}

		if flag == 1 {
			literal, err := r.ReadBits(8)
			if err != nil {
				return nil, ErrBadHeatshrinkCode
			}
			out = append(out, byte(literal))
			continue
		}

		offset, err := r.ReadBits(windowBits)
		if err != nil {
			return nil, ErrBadHeatshrinkCode
		}
		count, err := r.ReadBits(lookaheadBits)
		if err != nil {
			return nil, ErrBadHeatshrinkCode
		}
		offset++
		count++

		if offset > uint32(len(out)) {
			return nil, ErrBadHeatshrinkCode
		}
		start := uint32(len(out)) - offset
		for i := uint32(0); i < count; i++ {
			out = append(out, out[start+i])
		}
	}
}
