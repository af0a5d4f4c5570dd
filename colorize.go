package vni

import "github.com/PPUC/libvni/plane"

// Colorize processes one input frame: indexed pixels of length
// width*height, each value in [0, 2^bitLength). It recognizes the frame
// against the loaded PAL mappings, advances any active animation, and
// leaves the result in Frame(). It reports whether an output frame is
// available; the only reason it would not be is that no palette is
// selected yet.
func (c *Context) Colorize(frameData []byte, width, height, bitLength int) bool {
	if c.pal == nil || c.palette == -1 {
		return false
	}

	dim := Dimensions{Width: width, Height: height}
	c.output.HasFrame = false

	c.applyEmbeddedPaletteSwitch(frameData, bitLength)

	planes := plane.Split(frameData, width, height, bitLength)

	if len(c.pal.Mappings) > 0 {
		c.triggerAnimation(dim, planes, false)
	}

	if c.activeSeq != -1 && c.vni.Sequences[c.activeSeq].IsRunning {
		c.renderAnimation(&c.vni.Sequences[c.activeSeq], dim, planes)
	} else {
		c.renderPlain(dim, planes)
	}

	c.maybeResetPalette()

	if c.output.HasFrame {
		colors := 1 << c.output.BitLength
		c.output.Palette = expandPalette(c.pal.Palettes[c.palette], colors)
	}

	return c.output.HasFrame
}

// applyEmbeddedPaletteSwitch implements the embedded-palette pre-hook: only
// active for 4-bit frames, with more than one palette defined, and no VNI
// bundle loaded.
func (c *Context) applyEmbeddedPaletteSwitch(frameData []byte, bitLength int) {
	if bitLength != 4 || len(c.pal.Palettes) <= 1 || c.vni != nil {
		return
	}
	if len(frameData) >= 6 &&
		frameData[0] == 0x08 && frameData[1] == 0x09 && frameData[2] == 0x0A && frameData[3] == 0x0B {
		newPalette := int(frameData[5])*8 + int(frameData[4])
		if newPalette < len(c.pal.Palettes) {
			c.palette = newPalette
			if !c.pal.Palettes[newPalette].IsPersistent() {
				c.resetEmbedded = true
			}
			c.lastEmbeddedPalette = newPalette
		}
		return
	}
	if c.resetEmbedded {
		if c.defaultPalette != -1 {
			c.palette = c.defaultPalette
		}
		c.resetEmbedded = false
	}
}

func (c *Context) maybeResetPalette() {
	if c.paletteResetAtMs < 0 {
		return
	}
	if c.nowMs() >= c.paletteResetAtMs {
		if c.defaultPalette != -1 {
			c.palette = c.defaultPalette
		}
		c.paletteResetAtMs = -1
	}
}
