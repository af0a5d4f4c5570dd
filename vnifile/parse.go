package vnifile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/PPUC/libvni/internal/heatshrink"
	"github.com/PPUC/libvni/plane"
)

const maskMarker = 0x6D

// countingReader tracks how many bytes have been pulled from the underlying
// reader, independent of how much bufio has buffered ahead of the logical
// read position.
type countingReader struct {
	r io.Reader
	n uint32
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint32(n)
	return n, err
}

// Parse decodes a VNI animation bundle from r.
func Parse(r io.Reader) (*File, error) {
	cr := &countingReader{r: r}
	br := bufio.NewReader(cr)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil || string(magic[:]) != "VPIN" {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedHeader)
	}

	f := &File{ByOffset: make(map[uint32]int)}

	if err := binary.Read(br, binary.BigEndian, &f.Version); err != nil {
		return nil, fmt.Errorf("%w: file_version: %v", ErrMalformedHeader, err)
	}

	var numAnimations uint16
	if err := binary.Read(br, binary.BigEndian, &numAnimations); err != nil {
		return nil, fmt.Errorf("%w: num_animations: %v", ErrMalformedHeader, err)
	}

	if f.Version >= 2 {
		offsets := make([]uint32, numAnimations)
		if err := binary.Read(br, binary.BigEndian, &offsets); err != nil {
			return nil, fmt.Errorf("%w: offset_table: %v", ErrTruncatedStream, err)
		}
	}

	for i := 0; i < int(numAnimations); i++ {
		offsetInFile := cr.n - uint32(br.Buffered())
		seq, err := readSequence(br, f.Version, offsetInFile)
		if err != nil {
			if errors.Is(err, heatshrink.ErrBadHeatshrinkCode) {
				return nil, fmt.Errorf("vnifile: animation %d: %w", i, err)
			}
			return nil, fmt.Errorf("%w: animation %d: %v", ErrTruncatedStream, i, err)
		}
		f.Sequences = append(f.Sequences, seq)
		f.ByOffset[offsetInFile] = i
		if seq.Width > f.Dimensions.Width {
			f.Dimensions.Width = seq.Width
		}
		if seq.Height > f.Dimensions.Height {
			f.Dimensions.Height = seq.Height
		}
	}

	return f, nil
}

func readSequence(br *bufio.Reader, fileVersion uint16, offsetInFile uint32) (Sequence, error) {
	var seq Sequence
	seq.OffsetInFile = offsetInFile

	var nameLen uint16
	if err := binary.Read(br, binary.BigEndian, &nameLen); err != nil {
		return seq, err
	}
	if nameLen == 0 {
		seq.Name = "<undefined>"
	} else {
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(br, name); err != nil {
			return seq, err
		}
		seq.Name = string(name)
	}

	// Ignored playback metadata: cycles, hold_cycles, clock_from,
	// clock_small, clock_in_front, clock_off_x, clock_off_y, refresh_delay,
	// type, fsk.
	if err := skip(br, 2+2+2+1+1+2+2+2+1+1); err != nil {
		return seq, err
	}

	var rawNumFrames uint16
	if err := binary.Read(br, binary.BigEndian, &rawNumFrames); err != nil {
		return seq, err
	}
	numFrames := int32(int16(rawNumFrames))
	if numFrames < 0 {
		numFrames += 65536
	}

	if fileVersion >= 2 {
		if err := skip(br, 2); err != nil { // pad
			return seq, err
		}
		var numPaletteColors uint16
		if err := binary.Read(br, binary.BigEndian, &numPaletteColors); err != nil {
			return seq, err
		}
		if err := skip(br, int(numPaletteColors)*3); err != nil {
			return seq, err
		}
	}

	if fileVersion >= 3 {
		if err := skip(br, 1); err != nil { // edit_mode
			return seq, err
		}
	}

	if fileVersion >= 4 {
		if err := binary.Read(br, binary.BigEndian, &seq.Width); err != nil {
			return seq, err
		}
		if err := binary.Read(br, binary.BigEndian, &seq.Height); err != nil {
			return seq, err
		}
	} else {
		seq.Width, seq.Height = 128, 32
	}

	if fileVersion >= 5 {
		var numMasks uint16
		if err := binary.Read(br, binary.BigEndian, &numMasks); err != nil {
			return seq, err
		}
		for i := 0; i < int(numMasks); i++ {
			if err := skip(br, 1); err != nil { // locked
				return seq, err
			}
			var size uint16
			if err := binary.Read(br, binary.BigEndian, &size); err != nil {
				return seq, err
			}
			mask := make([]byte, size)
			if _, err := io.ReadFull(br, mask); err != nil {
				return seq, err
			}
			plane.ReverseBytes(mask)
			seq.Masks = append(seq.Masks, mask)
		}
	}

	if fileVersion >= 6 {
		if err := skip(br, 1); err != nil { // compiled_flag
			return seq, err
		}
		var size uint16
		if err := binary.Read(br, binary.BigEndian, &size); err != nil {
			return seq, err
		}
		if err := skip(br, int(size)); err != nil {
			return seq, err
		}
		if err := skip(br, 4); err != nil { // start_frame
			return seq, err
		}
	}

	var cumulativeDelay uint32
	for i := 0; i < int(numFrames); i++ {
		frame, err := readFrame(br, fileVersion, cumulativeDelay)
		if err != nil {
			return seq, fmt.Errorf("frame %d: %w", i, err)
		}
		cumulativeDelay += uint32(frame.DelayMs)
		seq.Frames = append(seq.Frames, frame)
	}
	seq.AnimationDurationMs = cumulativeDelay

	return seq, nil
}

func readFrame(br *bufio.Reader, fileVersion uint16, cumulativeDelay uint32) (Frame, error) {
	var frame Frame
	frame.TimeOffsetMs = cumulativeDelay

	var planeSize uint16
	if err := binary.Read(br, binary.BigEndian, &planeSize); err != nil {
		return frame, err
	}
	if err := binary.Read(br, binary.BigEndian, &frame.DelayMs); err != nil {
		return frame, err
	}
	if fileVersion >= 4 {
		if err := binary.Read(br, binary.BigEndian, &frame.Hash); err != nil {
			return frame, err
		}
	}
	bitLength, err := br.ReadByte()
	if err != nil {
		return frame, err
	}
	frame.BitLength = bitLength

	var compressed bool
	if fileVersion >= 3 {
		flag, err := br.ReadByte()
		if err != nil {
			return frame, err
		}
		compressed = flag != 0
	}

	source := br
	if compressed {
		var compressedSize uint32
		if err := binary.Read(br, binary.BigEndian, &compressedSize); err != nil {
			return frame, err
		}
		raw := make([]byte, compressedSize)
		if _, err := io.ReadFull(br, raw); err != nil {
			return frame, err
		}
		decompressed, err := heatshrink.Decompress(raw, 10, 5)
		if err != nil {
			return frame, err
		}
		source = bufio.NewReader(bytes.NewReader(decompressed))
	}

	for i := 0; i < int(bitLength); i++ {
		marker, err := source.ReadByte()
		if err != nil {
			return frame, err
		}
		data := make([]byte, planeSize)
		if _, err := io.ReadFull(source, data); err != nil {
			return frame, err
		}
		plane.ReverseBytes(data)
		if marker == maskMarker {
			frame.Mask = data
		} else {
			frame.Planes = append(frame.Planes, Plane{Marker: marker, Data: data})
		}
	}

	return frame, nil
}

func skip(r io.Reader, n int) error {
	if n == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}
