package vni

import (
	"github.com/PPUC/libvni/pal"
	"github.com/PPUC/libvni/plane"
	"github.com/PPUC/libvni/vnifile"
)

// findMapping computes the no-mask checksum of a plane and looks it up in
// the mapping table, falling back to each recognition mask in order.
func (c *Context) findMapping(planeData []byte, reverse bool) (pal.Mapping, uint32, bool) {
	noMaskCRC := plane.Checksum(planeData, reverse)
	if m, ok := c.pal.Mappings[noMaskCRC]; ok {
		return m, noMaskCRC, true
	}
	for _, mask := range c.pal.Masks {
		checksum := plane.ChecksumWithMask(planeData, mask, reverse)
		if m, ok := c.pal.Mappings[checksum]; ok {
			return m, noMaskCRC, true
		}
	}
	return pal.Mapping{}, noMaskCRC, false
}

// triggerAnimation is the per-input-frame recognition pass: it walks the
// split planes in order and applies each recognized plane's mapping. A
// mapping that leaves a sequence active in any mode other than LCM or
// MaskedReplace ends the pass at once; otherwise each plane is routed to the
// active sequence's Follow/LCM frame detection.
func (c *Context) triggerAnimation(dim Dimensions, planes [][]byte, reverse bool) {
	if len(c.pal.Mappings) == 0 {
		return
	}

	clear := true
	for _, p := range planes {
		mapping, noMaskCRC, found := c.findMapping(p, reverse)
		if found {
			c.startAnimation(mapping, dim, planes)
			if c.activeSeq != -1 {
				mode := c.vni.Sequences[c.activeSeq].SwitchMode
				if mode != pal.ModeLayeredColorMask && mode != pal.ModeMaskedReplace {
					return
				}
			}
		}
		if c.activeSeq == -1 {
			continue
		}
		seq := &c.vni.Sequences[c.activeSeq]
		switch seq.SwitchMode {
		case pal.ModeLayeredColorMask, pal.ModeMaskedReplace:
			clear = c.detectLCM(seq, p, noMaskCRC, reverse, clear)
		case pal.ModeFollow, pal.ModeFollowReplace:
			c.detectFollow(seq, p, noMaskCRC, c.pal.Masks, reverse)
		}
	}
}

// startAnimation applies a recognized mapping: switching the palette and,
// for animation modes, starting or continuing the referenced FrameSeq.
func (c *Context) startAnimation(mapping pal.Mapping, dim Dimensions, planes [][]byte) {
	if mapping.Mode == pal.ModeEvent {
		return
	}

	if c.activeSeq != -1 {
		active := &c.vni.Sequences[c.activeSeq]
		if (active.SwitchMode == pal.ModeLayeredColorMask || active.SwitchMode == pal.ModeMaskedReplace) &&
			mapping.Mode == active.SwitchMode && mapping.Offset == active.OffsetInFile {
			return // idempotent: already running this exact sequence
		}
	}

	if c.activeSeq != -1 {
		c.vni.Sequences[c.activeSeq].IsRunning = false
		c.activeSeq = -1
	}

	paletteIdx, ok := c.findPaletteByDeclaredIndex(mapping.PaletteIndex)
	if !ok {
		return
	}
	c.palette = paletteIdx
	c.paletteResetAtMs = -1

	if !mapping.Mode.IsAnimation() && mapping.Duration > 0 {
		c.paletteResetAtMs = c.nowMs() + int64(mapping.Duration)
	}

	if !mapping.Mode.IsAnimation() {
		return
	}
	if c.vni == nil {
		return
	}

	seqIdx, ok := c.vni.ByOffset[mapping.Offset]
	if !ok {
		return
	}
	c.activeSeq = seqIdx
	seq := &c.vni.Sequences[seqIdx]
	seq.SwitchMode = mapping.Mode
	seq.FrameIndex = 0
	seq.IsRunning = true

	switch mapping.Mode {
	case pal.ModeColorMask, pal.ModeFollow, pal.ModeReplace, pal.ModeFollowReplace:
		seq.LastTickMs = c.nowMs()
		seq.TimerMs = 0
	case pal.ModeLayeredColorMask, pal.ModeMaskedReplace:
		c.startLCM(seq)
	}

	c.renderAnimation(seq, dim, planes)
}

func (c *Context) startLCM(seq *vnifile.Sequence) {
	seq.LCMBufferPlanes = nil
	if len(seq.Frames) == 0 {
		return
	}
	planeCount := len(seq.Frames[0].Planes)
	for i := 0; i < planeCount; i++ {
		seq.LCMBufferPlanes = append(seq.LCMBufferPlanes, plane.NewPlane(int(seq.Width), int(seq.Height)))
	}
	if seq.SwitchMode == pal.ModeMaskedReplace {
		seq.ReplaceMask = plane.NewPlane(int(seq.Width), int(seq.Height))
	}
}

// detectFollow scans a sequence's frames in order and jumps FrameIndex
// to the first one matching the input plane, by the no-mask checksum or by
// any PAL-level recognition mask.
func (c *Context) detectFollow(seq *vnifile.Sequence, planeData []byte, noMaskCRC uint32, masks [][]byte, reverse bool) {
	for i, frame := range seq.Frames {
		if noMaskCRC == frame.Hash {
			seq.FrameIndex = i
			return
		}
		for _, mask := range masks {
			if plane.ChecksumWithMask(planeData, mask, reverse) == frame.Hash {
				seq.FrameIndex = i
				return
			}
		}
	}
}

// detectLCM accumulates matching frames' planes into the sequence's LCM
// buffers via OR. clear threads across the planes of one input frame: the
// first match in a given Colorize call zeroes the buffers before OR-ing in.
func (c *Context) detectLCM(seq *vnifile.Sequence, planeData []byte, noMaskCRC uint32, reverse bool, clear bool) bool {
	if len(seq.Masks) == 0 {
		return clear
	}
	checksum := noMaskCRC
	for k := -1; k < len(seq.Masks); k++ {
		if k >= 0 {
			checksum = plane.ChecksumWithMask(planeData, seq.Masks[k], reverse)
		}
		for _, frame := range seq.Frames {
			if frame.Hash != checksum {
				continue
			}
			if clear {
				for _, buf := range seq.LCMBufferPlanes {
					plane.Clear(buf)
				}
				clear = false
				if seq.SwitchMode == pal.ModeMaskedReplace {
					plane.Clear(seq.ReplaceMask)
				}
			}
			for i, p := range frame.Planes {
				plane.Or(p.Data, seq.LCMBufferPlanes[i])
				if seq.SwitchMode == pal.ModeMaskedReplace && len(frame.Mask) > 0 {
					plane.Or(frame.Mask, seq.ReplaceMask)
				}
			}
		}
	}
	return clear
}
