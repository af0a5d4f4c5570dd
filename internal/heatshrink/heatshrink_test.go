package heatshrink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBitWriter is the write-side mirror of bitio.Reader, used only to
// construct fixtures for these tests.
type testBitWriter struct {
	buf []byte
	acc uint32
	n   uint
}

func (w *testBitWriter) writeBits(v uint32, bits uint) {
	w.acc |= (v & (1<<bits - 1)) << w.n
	w.n += bits
	for w.n >= 8 {
		w.buf = append(w.buf, byte(w.acc&0xff))
		w.acc >>= 8
		w.n -= 8
	}
}

func (w *testBitWriter) literal(b byte) {
	w.writeBits(1, 1)
	w.writeBits(uint32(b), 8)
}

func (w *testBitWriter) backref(offset, count, windowBits, lookaheadBits uint32) {
	w.writeBits(0, 1)
	w.writeBits(offset-1, uint(windowBits))
	w.writeBits(count-1, uint(lookaheadBits))
}

func (w *testBitWriter) bytes() []byte {
	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc&0xff))
		w.acc, w.n = 0, 0
	}
	return w.buf
}

func TestDecompressLiteralsOnly(t *testing.T) {
	t.Parallel()
	var w testBitWriter
	for _, b := range []byte("hi") {
		w.literal(b)
	}
	out, err := Decompress(w.bytes(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), out)
}

func TestDecompressBackReferenceRunLength(t *testing.T) {
	t.Parallel()
	var w testBitWriter
	w.literal('A')
	// offset=1, count=3 -> repeats the last byte three more times
	w.backref(1, 3, 10, 5)
	out, err := Decompress(w.bytes(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("AAAA"), out)
}

func TestDecompressBackReferenceCopiesEarlierSpan(t *testing.T) {
	t.Parallel()
	var w testBitWriter
	for _, b := range []byte("ab") {
		w.literal(b)
	}
	// offset=2, count=4: copies "ab" then continues reading its own output
	w.backref(2, 4, 10, 5)
	out, err := Decompress(w.bytes(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("ababab"), out)
}

func TestDecompressBadOffsetFails(t *testing.T) {
	t.Parallel()
	var w testBitWriter
	w.literal('A')
	w.backref(5, 1, 10, 5)
	_, err := Decompress(w.bytes(), 10, 5)
	assert.ErrorIs(t, err, ErrBadHeatshrinkCode)
}

func TestDecompressTruncatedCodeFails(t *testing.T) {
	t.Parallel()
	var w testBitWriter
	w.writeBits(0, 1) // back-reference flag with no offset/count bits following
	_, err := Decompress(w.bytes(), 10, 5)
	assert.ErrorIs(t, err, ErrBadHeatshrinkCode)
}

func TestDecompressEmptyInput(t *testing.T) {
	t.Parallel()
	out, err := Decompress(nil, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}
