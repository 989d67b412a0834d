package muxer

import "fmt"

// TooManyTracksError is returned by Builder.AddTrack when the builder
// already holds 255 tracks. The strings the caller passed in are returned
// inside the error so they can be recovered/reused.
type TooManyTracksError struct {
	Name            WebvttString
	Language        WebvttString
	AssocLanguage   *WebvttString
	Characteristics *WebvttString
}

func (e *TooManyTracksError) Error() string {
	return "too many subtitle tracks: muxer builder already holds the maximum of 255"
}

// InvalidTrackIndexError is returned by Muxer.AddCue when the track index
// doesn't name a track configured on the muxer.
type InvalidTrackIndexError struct {
	Track uint8
}

func (e *InvalidTrackIndexError) Error() string {
	return fmt.Sprintf("invalid webvtt track index %d", e.Track)
}
