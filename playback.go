package vni

import (
	"github.com/PPUC/libvni/pal"
	"github.com/PPUC/libvni/plane"
	"github.com/PPUC/libvni/scale"
	"github.com/PPUC/libvni/vnifile"
)

// renderAnimation advances and renders the active sequence by one Colorize
// call's worth of state. Time-driven modes (ColorMask, Replace) may repeat
// the previous frame without advancing when their delay has not elapsed;
// driver-controlled modes (Follow family, LCM family) always render at
// whatever FrameIndex the trigger engine last set.
func (c *Context) renderAnimation(seq *vnifile.Sequence, dim Dimensions, planes [][]byte) {
	if seq.SwitchMode == pal.ModeColorMask || seq.SwitchMode == pal.ModeReplace {
		now := c.nowMs()
		delay := now - seq.LastTickMs
		seq.LastTickMs = now
		seq.TimerMs -= delay
		if seq.TimerMs > 0 {
			if seq.FrameIndex > 0 {
				seq.FrameIndex--
			}
			c.outputFrame(seq, dim, planes)
			seq.FrameIndex++
			return
		}
	}

	if seq.FrameIndex < len(seq.Frames) {
		switch seq.SwitchMode {
		case pal.ModeLayeredColorMask, pal.ModeMaskedReplace, pal.ModeFollow, pal.ModeFollowReplace:
			c.outputFrame(seq, dim, planes)
			return
		}
		seq.TimerMs += int64(seq.Frames[seq.FrameIndex].DelayMs)
		c.outputFrame(seq, dim, planes)
		seq.FrameIndex++
		return
	}

	seq.SwitchMode = pal.ModePalette
	c.outputFrame(seq, dim, planes)
	seq.IsRunning = false
	seq.FrameIndex = 0
}

// outputFrame composes the current frame's output planes according to the
// sequence's switch mode and writes them into c.output.
func (c *Context) outputFrame(seq *vnifile.Sequence, dim Dimensions, planes [][]byte) {
	var outplanes [][]byte
	switch seq.SwitchMode {
	case pal.ModeColorMask, pal.ModeFollow:
		outplanes = renderColorMask(seq, planes, seq.FrameIndex)
	case pal.ModeReplace, pal.ModeFollowReplace:
		if seq.FrameIndex < len(seq.Frames) {
			for _, p := range seq.Frames[seq.FrameIndex].Planes {
				outplanes = append(outplanes, p.Data)
			}
		}
	case pal.ModeLayeredColorMask, pal.ModeMaskedReplace:
		outplanes = c.renderLCM(seq, dim, planes)
	default:
		outplanes = planes
	}

	outDim := dim
	if len(outplanes) > 0 && len(outplanes[0]) == dim.Surface()/2 {
		outDim = dim.doubled()
	}

	c.output.Pixels = plane.Join(outplanes, outDim.Width, outDim.Height)
	c.output.Width = outDim.Width
	c.output.Height = outDim.Height
	c.output.BitLength = len(outplanes)
	c.output.HasFrame = true
}

// renderColorMask overlays the top two authored planes onto the lower input
// planes, as used by ColorMask and Follow.
func renderColorMask(seq *vnifile.Sequence, vpmFrame [][]byte, frameIndex int) [][]byte {
	if len(seq.Frames) == 0 {
		return nil
	}
	frame := seq.Frames[frameIndex]
	frameCount := len(frame.Planes)
	if frameCount < 4 {
		return vpmFrame
	}

	out := make([][]byte, frameCount)
	if len(vpmFrame) == frameCount {
		for i := 0; i+2 < len(vpmFrame); i++ {
			out[i] = vpmFrame[i]
		}
		for i := len(vpmFrame) - 2; i < frameCount; i++ {
			out[i] = frame.Planes[i].Data
		}
	} else {
		for i := 0; i < len(vpmFrame); i++ {
			out[i] = vpmFrame[i]
		}
		for i := len(vpmFrame); i < frameCount; i++ {
			out[i] = frame.Planes[i].Data
		}
	}
	return out
}

// renderLCM composes output from the sequence's accumulated LCM buffers,
// used by LayeredColorMask and MaskedReplace.
func (c *Context) renderLCM(seq *vnifile.Sequence, dim Dimensions, planes [][]byte) [][]byte {
	numPlanes := len(seq.LCMBufferPlanes)
	outplanes := make([][]byte, numPlanes)

	if seq.SwitchMode == pal.ModeLayeredColorMask {
		for i := 0; i < len(planes) && i < numPlanes; i++ {
			outplanes[i] = planes[i]
		}
		for i := len(planes); i < numPlanes; i++ {
			outplanes[i] = seq.LCMBufferPlanes[i]
		}
		return outplanes
	}

	// MaskedReplace.
	if len(planes) > 0 && len(seq.LCMBufferPlanes[0]) == len(planes[0])*4 {
		indexed := plane.Join(planes, dim.Width, dim.Height)
		var scaled []byte
		if c.scalerMode == ScalerScale2X {
			scaled = scale.Scale2X(indexed, dim.Width, dim.Height)
		} else {
			scaled = scale.Double(indexed, dim.Width, dim.Height)
		}
		scaledDim := dim.doubled()
		planes = plane.Split(scaled, scaledDim.Width, scaledDim.Height, len(planes))
	}
	for i := 0; i < numPlanes; i++ {
		if i < len(planes) {
			outplanes[i] = plane.CombineWithMask(seq.LCMBufferPlanes[i], planes[i], seq.ReplaceMask)
		} else {
			outplanes[i] = seq.LCMBufferPlanes[i]
		}
	}
	return outplanes
}

// renderPlain handles the non-animated path: applying the selected scaler
// when the input is exactly half the VNI bundle's declared dimensions, then
// joining planes straight through.
func (c *Context) renderPlain(dim Dimensions, planes [][]byte) {
	outDim := dim
	if c.vni != nil &&
		dim.Width*2 == int(c.vni.Dimensions.Width) && dim.Height*2 == int(c.vni.Dimensions.Height) &&
		(c.scalerMode == ScalerScale2X || c.scalerMode == ScalerScaleDouble) {
		indexed := plane.Join(planes, dim.Width, dim.Height)
		var scaled []byte
		if c.scalerMode == ScalerScale2X {
			scaled = scale.Scale2X(indexed, dim.Width, dim.Height)
		} else {
			scaled = scale.Double(indexed, dim.Width, dim.Height)
		}
		outDim = dim.doubled()
		planes = plane.Split(scaled, outDim.Width, outDim.Height, len(planes))
	}

	c.output.Pixels = plane.Join(planes, outDim.Width, outDim.Height)
	c.output.Width = outDim.Width
	c.output.Height = outDim.Height
	c.output.BitLength = len(planes)
	c.output.HasFrame = true
}
