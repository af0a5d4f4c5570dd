// Package vnifile decodes the VNI animation bundle format: a sequence of
// named FrameSeqs, each an ordered list of frames carrying one or more
// compressed or raw bit planes.
package vnifile

import "github.com/PPUC/libvni/pal"

// Plane is one authored bit plane within a frame: its marker byte (as read
// from the file) and the plane bytes, already bit-reversed to runtime
// (LSB-first) order.
type Plane struct {
	Marker byte
	Data   []byte
}

// Frame is one authored animation frame.
type Frame struct {
	TimeOffsetMs uint32 // cumulative delay of the frames before this one
	DelayMs      uint16
	BitLength    uint8
	Planes       []Plane
	Mask         []byte // optional, bit-reversed; nil if absent
	Hash         uint32 // file-ver >= 4; zero otherwise
}

// Sequence is one authored animation (FrameSeq): its frames plus the mutable
// playback state the trigger and playback engines advance as a caller drives
// colorize calls forward.
type Sequence struct {
	Name                string
	OffsetInFile        uint32
	Frames              []Frame
	AnimationDurationMs uint32
	Width, Height       uint16
	Masks               [][]byte // bit-reversed on load

	// Runtime playback state.
	SwitchMode      pal.SwitchMode
	IsRunning       bool
	FrameIndex      int
	LastTickMs      int64
	TimerMs         int64
	LCMBufferPlanes [][]byte
	ReplaceMask     []byte
}

// File is a fully parsed VNI bundle.
type File struct {
	Version    uint16
	Sequences  []Sequence
	ByOffset   map[uint32]int // OffsetInFile -> index into Sequences
	Dimensions struct {
		Width, Height uint16 // max over all sequences
	}
}
