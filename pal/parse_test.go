package pal

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builder struct {
	buf bytes.Buffer
}

func (b *builder) u8(v byte) *builder {
	b.buf.WriteByte(v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	binary.Write(&b.buf, binary.BigEndian, v) //nolint:errcheck
	return b
}

func (b *builder) u32(v uint32) *builder {
	binary.Write(&b.buf, binary.BigEndian, v) //nolint:errcheck
	return b
}

func (b *builder) raw(v ...byte) *builder {
	b.buf.Write(v)
	return b
}

func TestParseEmptyPalette(t *testing.T) {
	t.Parallel()
	b := new(builder)
	b.u8(1).u16(0) // version=1, num_palettes=0

	f, err := Parse(&b.buf)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), f.Version)
	assert.Empty(t, f.Palettes)
	assert.Equal(t, -1, f.DefaultPaletteIndex)
	assert.Empty(t, f.Mappings)
}

func TestParsePalettesOnly(t *testing.T) {
	t.Parallel()
	b := new(builder)
	b.u8(1).u16(2)
	// palette 0: index=0, 2 colors, type=1 (persistent default)
	b.u16(0).u16(2).u8(1).raw(0x10, 0x20, 0x30, 0x40, 0x50, 0x60)
	// palette 1: index=1, 1 color, type=0
	b.u16(1).u16(1).u8(0).raw(0xaa, 0xbb, 0xcc)

	f, err := Parse(&b.buf)
	require.NoError(t, err)
	require.Len(t, f.Palettes, 2)
	assert.Equal(t, 0, f.DefaultPaletteIndex)
	assert.True(t, f.Palettes[0].IsDefault())
	assert.True(t, f.Palettes[0].IsPersistent())
	assert.False(t, f.Palettes[1].IsDefault())
	assert.Equal(t, []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60}, f.Palettes[0].Colors)
}

func TestParseWithMappings(t *testing.T) {
	t.Parallel()
	b := new(builder)
	b.u8(1).u16(1)
	b.u16(0).u16(1).u8(1).raw(1, 2, 3)
	b.u16(2) // num_mappings
	b.u32(0xdeadbeef).u8(byte(ModePalette)).u16(0).u32(500)
	b.u32(0xcafef00d).u8(byte(ModeReplace)).u16(1).u32(1024)

	f, err := Parse(&b.buf)
	require.NoError(t, err)
	require.Len(t, f.Mappings, 2)
	m1 := f.Mappings[0xdeadbeef]
	assert.Equal(t, ModePalette, m1.Mode)
	assert.Equal(t, uint32(500), m1.Duration)
	m2 := f.Mappings[0xcafef00d]
	assert.Equal(t, ModeReplace, m2.Mode)
	assert.Equal(t, uint32(1024), m2.Offset)
}

func TestParseWithValidMasks(t *testing.T) {
	t.Parallel()
	b := new(builder)
	b.u8(1).u16(0)
	b.u16(0) // num_mappings=0
	b.u8(2)  // num_masks=2
	mask := bytes.Repeat([]byte{0xff}, 256)
	b.buf.Write(mask)
	b.buf.Write(mask)

	f, err := Parse(&b.buf)
	require.NoError(t, err)
	require.Len(t, f.Masks, 2)
	assert.Len(t, f.Masks[0], 256)
	assert.Len(t, f.Masks[1], 256)
}

func TestParseMasksToleratesTrailingPadding(t *testing.T) {
	t.Parallel()
	b := new(builder)
	b.u8(1).u16(0)
	b.u16(0)
	b.u8(2) // num_masks=2, 512-byte masks plus 1 stray trailing byte
	b.buf.Write(bytes.Repeat([]byte{0xff}, 1024))
	b.buf.WriteByte(0x00)

	f, err := Parse(&b.buf)
	require.NoError(t, err)
	require.Len(t, f.Masks, 2)
	assert.Len(t, f.Masks[0], 512)
	assert.Len(t, f.Masks[1], 512)
}

func TestParseUnsupportedMaskSizeIsSilentlyDropped(t *testing.T) {
	t.Parallel()
	b := new(builder)
	b.u8(1).u16(0)
	b.u16(0)
	b.u8(1) // num_masks=1, but only 10 trailing bytes follow
	b.raw(make([]byte, 10)...)

	f, err := Parse(&b.buf)
	require.NoError(t, err)
	assert.Empty(t, f.Masks)
}

func TestParseTruncatedHeaderFails(t *testing.T) {
	t.Parallel()
	_, err := Parse(bytes.NewReader(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestParseTruncatedPaletteFails(t *testing.T) {
	t.Parallel()
	b := new(builder)
	b.u8(1).u16(1)
	b.u16(0).u16(5).u8(0) // promises 5 colors, supplies none

	_, err := Parse(&b.buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncatedStream)
}
