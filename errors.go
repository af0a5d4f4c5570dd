package vni

import "errors"

// ErrNoPaletteFile is returned by Load when no PAL reader is supplied: a VNI
// bundle without a palette file has nothing to colorize against.
var ErrNoPaletteFile = errors.New("vni: no palette file supplied")
