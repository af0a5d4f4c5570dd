package vni

// Dimensions is a frame's width and height in pixels.
type Dimensions struct {
	Width, Height int
}

// Surface is the pixel count width*height.
func (d Dimensions) Surface() int {
	return d.Width * d.Height
}

func (d Dimensions) doubled() Dimensions {
	return Dimensions{d.Width * 2, d.Height * 2}
}

// ScalerMode selects the upscaling rule applied to pre-upscaled content.
type ScalerMode int

// The closed set of scaler modes.
const (
	ScalerNone ScalerMode = iota
	ScalerScale2X
	ScalerScaleDouble
)

// Frame is a read-only view of the most recently produced output frame. It
// remains valid only until the next call to Colorize; callers that need to
// retain it must copy Pixels and Palette.
type Frame struct {
	Width, Height int
	BitLength     int
	HasFrame      bool
	Pixels        []byte
	Palette       []byte
}
