package pal

import "errors"

// ErrMalformedHeader means the PAL top-level structure could not be read at
// all (truncated before the version byte or palette count).
var ErrMalformedHeader = errors.New("pal: malformed header")

// ErrTruncatedStream means a required field ran out of bytes mid-read.
var ErrTruncatedStream = errors.New("pal: truncated stream")
