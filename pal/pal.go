// Package pal implements the PAL file format: palettes, checksum-to-action
// mappings and optional recognition masks.
package pal

// SwitchMode selects how a recognized checksum changes what's displayed.
type SwitchMode uint8

// The closed set of switch modes a Mapping can select.
const (
	ModePalette SwitchMode = iota
	ModeReplace
	ModeColorMask
	ModeEvent
	ModeFollow
	ModeLayeredColorMask
	ModeFollowReplace
	ModeMaskedReplace
)

// IsAnimation reports whether the mode drives a FrameSeq rather than a plain
// palette switch or an ignored event marker.
func (m SwitchMode) IsAnimation() bool {
	return m != ModePalette && m != ModeEvent
}

// Entry is one palette defined in the file: an index, its type (normal,
// persistent default, transient default) and its RGB colors.
type Entry struct {
	Index  uint16
	Type   uint8
	Colors []byte // RGB triples
}

// IsDefault reports whether this palette is the file's default (persistent
// or transient).
func (e Entry) IsDefault() bool {
	return e.Type == 1 || e.Type == 2
}

// IsPersistent reports whether this palette survives an embedded-switch
// reset instead of being reverted away from.
func (e Entry) IsPersistent() bool {
	return e.Type == 1
}

// Mapping ties a recognized checksum to either a palette switch or an
// animation start.
type Mapping struct {
	Checksum     uint32
	Mode         SwitchMode
	PaletteIndex uint16
	Duration     uint32 // milliseconds; valid when Mode == ModePalette, 0 = indefinite
	Offset       uint32 // byte offset into the VNI file; valid otherwise
}

// File is a fully parsed PAL file.
type File struct {
	Version             uint8
	Palettes            []Entry
	Mappings            map[uint32]Mapping
	Masks               [][]byte
	DefaultPaletteIndex int // index into Palettes, -1 if none
}
