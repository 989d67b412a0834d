// Package muxer implements the WebVTT-in-H.264-SEI muxer state machine:
// per-track cue queues kept sorted by start time, a chunk scheduler paced
// by a configured send frequency, and a monotonically increasing chunk
// counter, writing through the bytestream/h264 and bytestream/webvtt layers.
package muxer

import (
	"fmt"
	"strings"
)

// NulError reports an attempt to build a WebvttString from a string that
// contains an interior NUL byte, which the wire format cannot represent
// since every string field is NUL-terminated.
type NulError struct {
	String      string
	NulPosition int
}

func (e *NulError) Error() string {
	return fmt.Sprintf("webvtt string contains interior NUL at offset %d", e.NulPosition)
}

// WebvttString is a UTF-8 string guaranteed to contain no interior NUL byte.
// It is immutable once constructed.
type WebvttString struct {
	value string
}

// NewWebvttString checks s for an interior NUL byte and, if none is found,
// returns it wrapped as a WebvttString.
func NewWebvttString(s string) (WebvttString, error) {
	if pos := strings.IndexByte(s, 0); pos >= 0 {
		return WebvttString{}, &NulError{String: s, NulPosition: pos}
	}
	return WebvttString{value: s}, nil
}

// String returns the underlying string.
func (s WebvttString) String() string {
	return s.value
}
