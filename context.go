// Package vni ties the PAL and VNI decoders, the trigger engine and the
// playback engine together behind a single Colorize entry point.
package vni

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"time"

	"github.com/PPUC/libvni/pal"
	"github.com/PPUC/libvni/vnifile"
)

// Context holds the state for one colorizing session: the parsed PAL and
// VNI files, the currently selected palette and animation, and the most
// recently produced output frame. A Context is not safe for concurrent use.
type Context struct {
	pal *pal.File
	vni *vnifile.File

	output Frame

	scalerMode ScalerMode

	activeSeq int // index into vni.Sequences, -1 if none
	palette   int // index into pal.Palettes, -1 if none

	defaultPalette      int // index into pal.Palettes, -1 if none
	resetEmbedded       bool
	lastEmbeddedPalette int
	paletteResetAtMs    int64 // absolute ms deadline, -1 if none

	pacPath string

	processStart time.Time
	logger       *log.Logger
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithLogger routes diagnostics (such as the "PAC not supported" notice) to
// the given logger instead of discarding them.
func WithLogger(logger *log.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// WithPacPath accepts a path to an encrypted PAC-variant file for API
// compatibility with callers migrating from that format. The PAC variant is
// explicitly unsupported: the path is never read, and its presence only
// produces a diagnostic once Load has finished applying every Option (so the
// diagnostic always reaches whichever logger WithLogger configured,
// regardless of the order the two options were passed in).
func WithPacPath(path string) Option {
	return func(c *Context) {
		c.pacPath = path
	}
}

// Load parses a PAL reader (required) and an optional VNI reader into a new
// Context. vniReader may be nil: embedded-palette switching still works
// without an animation bundle, but no animation can ever trigger.
func Load(palReader, vniReader io.Reader, opts ...Option) (*Context, error) {
	if palReader == nil {
		return nil, ErrNoPaletteFile
	}

	c := &Context{
		activeSeq:        -1,
		palette:          -1,
		defaultPalette:   -1,
		paletteResetAtMs: -1,
		processStart:     time.Now(),
		logger:           log.New(ioutil.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pacPath != "" && c.logger != nil {
		c.logger.Printf("vni: encrypted PAC files are not supported; ignoring %q", c.pacPath)
	}

	palFile, err := pal.Parse(palReader)
	if err != nil {
		return nil, fmt.Errorf("vni: loading palette file: %w", err)
	}
	c.pal = palFile
	c.defaultPalette = palFile.DefaultPaletteIndex
	c.palette = c.defaultPalette

	if vniReader != nil {
		vniFile, err := vnifile.Parse(vniReader)
		if err != nil {
			return nil, fmt.Errorf("vni: loading animation bundle: %w", err)
		}
		c.vni = vniFile
	}

	return c, nil
}

// SetScalerMode changes the upscaling rule used for pre-upscaled content.
// It can be called at any time, including between Colorize calls.
func (c *Context) SetScalerMode(mode ScalerMode) {
	c.scalerMode = mode
}

// Has128x32Animation reports whether the loaded PAL file carries at least
// one recognition mask and that mask is sized for a 128x32 display.
func (c *Context) Has128x32Animation() bool {
	return c.pal != nil && len(c.pal.Masks) > 0 && len(c.pal.Masks[0]) == 512
}

// Frame returns the most recently produced output frame. The returned view
// is only valid until the next call to Colorize.
func (c *Context) Frame() Frame {
	return c.output
}

func (c *Context) findPaletteByDeclaredIndex(declared uint16) (int, bool) {
	for i, e := range c.pal.Palettes {
		if e.Index == declared {
			return i, true
		}
	}
	return 0, false
}

func expandPalette(entry pal.Entry, colors int) []byte {
	out := make([]byte, colors*3)
	available := len(entry.Colors) / 3
	if available == 0 {
		return out
	}
	for i := 0; i < colors; i++ {
		src := i
		if src > available-1 {
			src = available - 1
		}
		copy(out[i*3:i*3+3], entry.Colors[src*3:src*3+3])
	}
	return out
}
