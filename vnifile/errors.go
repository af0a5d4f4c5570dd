package vnifile

import "errors"

// ErrMalformedHeader means the "VPIN" magic was missing or unreadable, or the
// file version or animation count after it could not be read.
var ErrMalformedHeader = errors.New("vnifile: malformed header")

// ErrTruncatedStream means a required field ran out of bytes mid-read.
var ErrTruncatedStream = errors.New("vnifile: truncated stream")
