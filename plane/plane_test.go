package plane

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseByteIsInvolution(t *testing.T) {
	t.Parallel()
	for i := 0; i < 256; i++ {
		b := byte(i)
		assert.Equal(t, b, ReverseByte(ReverseByte(b)))
	}
}

func TestReverseByteKnownValues(t *testing.T) {
	t.Parallel()
	assert.Equal(t, byte(0x00), ReverseByte(0x00))
	assert.Equal(t, byte(0xff), ReverseByte(0xff))
	assert.Equal(t, byte(0x01), ReverseByte(0x80))
	assert.Equal(t, byte(0x0f), ReverseByte(0xf0))
}

func randFrame(seed int64, n int, max byte) []byte {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.Intn(int(max) + 1))
	}
	return out
}

func TestSplitJoinRoundTrip(t *testing.T) {
	t.Parallel()
	width, height, depth := 16, 8, 4
	frame := randFrame(1, width*height, 1<<depth-1)

	planes := Split(frame, width, height, depth)
	assert.Len(t, planes, depth)
	for _, p := range planes {
		assert.Len(t, p, width*height/8)
	}

	got := Join(planes, width, height)
	assert.Equal(t, frame, got)
}

func TestJoinSplitStable(t *testing.T) {
	t.Parallel()
	width, height, depth := 8, 8, 2
	frame := randFrame(2, width*height, 3)
	planes1 := Split(frame, width, height, depth)
	joined := Join(planes1, width, height)
	planes2 := Split(joined, width, height, depth)
	assert.Equal(t, planes1, planes2)
}

func TestOrAndClear(t *testing.T) {
	t.Parallel()
	dst := []byte{0x0f, 0x00}
	src := []byte{0xf0, 0x01}
	Or(src, dst)
	assert.Equal(t, []byte{0xff, 0x01}, dst)

	Clear(dst)
	assert.Equal(t, []byte{0x00, 0x00}, dst)
}

func TestCombineWithMask(t *testing.T) {
	t.Parallel()
	base := []byte{0xff, 0x00}
	overlay := []byte{0x00, 0xff}
	mask := []byte{0x0f, 0x0f}
	out := CombineWithMask(base, overlay, mask)
	// bit set in mask -> take overlay; bit clear in mask -> take base
	assert.Equal(t, []byte{0xf0, 0x0f}, out)
}

func TestChecksumDeterministic(t *testing.T) {
	t.Parallel()
	data := randFrame(3, 64, 0xff)
	a := Checksum(data, false)
	b := Checksum(data, false)
	assert.Equal(t, a, b)

	reversed := Checksum(data, true)
	assert.NotEqual(t, a, reversed, "reversed checksum should differ for non-palindromic data")
}

func TestChecksumWithMaskMasksBits(t *testing.T) {
	t.Parallel()
	data := []byte{0xff, 0xff}
	mask := []byte{0x00, 0x00}
	zeroed := []byte{0x00, 0x00}
	assert.Equal(t, Checksum(zeroed, false), ChecksumWithMask(data, mask, false))
}
