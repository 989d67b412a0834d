package muxer

import "time"

// Cue is one WebVTT subtitle cue: a start time, a duration, and text.
// A Cue is owned by exactly one track's cue queue.
type Cue struct {
	StartTime time.Duration
	Duration  time.Duration
	Text      WebvttString
}

// TrackConfig is the immutable configuration of one subtitle track, set
// when it is added to a MuxerBuilder. Its index among the builder's tracks
// becomes its wire track_index.
type TrackConfig struct {
	Default         bool
	Autoselect      bool
	Forced          bool
	Name            WebvttString
	Language        WebvttString
	AssocLanguage   *WebvttString
	Characteristics *WebvttString
}

// trackState is a track's configuration plus its runtime cue queue, kept
// sorted ascending by StartTime (stable: equal keys keep insertion order).
type trackState struct {
	config TrackConfig
	cues   []Cue
}
