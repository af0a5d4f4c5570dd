package pal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Parse decodes a PAL file from r: a palette/mapping/mask bundle. Mapping
// and mask sections are optional trailing blocks; their presence is
// detected by whether the stream has any bytes left, not by a length field.
func Parse(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	f := &File{
		Mappings:            make(map[uint32]Mapping),
		DefaultPaletteIndex: -1,
	}

	version, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: version: %v", ErrMalformedHeader, err)
	}
	f.Version = version

	var numPalettes uint16
	if err := binary.Read(br, binary.BigEndian, &numPalettes); err != nil {
		return nil, fmt.Errorf("%w: num_palettes: %v", ErrMalformedHeader, err)
	}

	for i := 0; i < int(numPalettes); i++ {
		e, err := readEntry(br)
		if err != nil {
			return nil, fmt.Errorf("%w: palette %d: %v", ErrTruncatedStream, i, err)
		}
		f.Palettes = append(f.Palettes, e)
	}
	f.DefaultPaletteIndex = resolveDefault(f.Palettes)

	if _, err := br.Peek(1); err != nil {
		return f, nil
	}

	var numMappings uint16
	if err := binary.Read(br, binary.BigEndian, &numMappings); err != nil {
		return nil, fmt.Errorf("%w: num_mappings: %v", ErrTruncatedStream, err)
	}
	for i := 0; i < int(numMappings); i++ {
		m, err := readMapping(br)
		if err != nil {
			return nil, fmt.Errorf("%w: mapping %d: %v", ErrTruncatedStream, i, err)
		}
		f.Mappings[m.Checksum] = m
	}

	if _, err := br.Peek(1); err != nil {
		return f, nil
	}

	numMasks, err := br.ReadByte()
	if err != nil {
		return f, nil
	}
	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("%w: masks: %v", ErrTruncatedStream, err)
	}
	if numMasks == 0 {
		return f, nil
	}
	maskLen := len(rest) / int(numMasks)
	if maskLen != 256 && maskLen != 512 && maskLen != 1536 {
		// UnsupportedMaskSize: silently drop the mask block, report success.
		return f, nil
	}
	for i := 0; i < int(numMasks); i++ {
		f.Masks = append(f.Masks, rest[i*maskLen:(i+1)*maskLen])
	}

	return f, nil
}

func readEntry(br *bufio.Reader) (Entry, error) {
	var e Entry
	if err := binary.Read(br, binary.BigEndian, &e.Index); err != nil {
		return e, err
	}
	var numColors uint16
	if err := binary.Read(br, binary.BigEndian, &numColors); err != nil {
		return e, err
	}
	t, err := br.ReadByte()
	if err != nil {
		return e, err
	}
	e.Type = t
	e.Colors = make([]byte, int(numColors)*3)
	if _, err := io.ReadFull(br, e.Colors); err != nil {
		return e, err
	}
	return e, nil
}

func readMapping(br *bufio.Reader) (Mapping, error) {
	var m Mapping
	if err := binary.Read(br, binary.BigEndian, &m.Checksum); err != nil {
		return m, err
	}
	mode, err := br.ReadByte()
	if err != nil {
		return m, err
	}
	m.Mode = SwitchMode(mode)
	if err := binary.Read(br, binary.BigEndian, &m.PaletteIndex); err != nil {
		return m, err
	}
	var durationOrOffset uint32
	if err := binary.Read(br, binary.BigEndian, &durationOrOffset); err != nil {
		return m, err
	}
	if m.Mode == ModePalette {
		m.Duration = durationOrOffset
	} else {
		m.Offset = durationOrOffset
	}
	return m, nil
}

func resolveDefault(entries []Entry) int {
	for i, e := range entries {
		if e.IsDefault() {
			return i
		}
	}
	if len(entries) > 0 {
		return 0
	}
	return -1
}
