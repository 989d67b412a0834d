package muxer

import (
	"time"
)

const maxTracks = 0xFF

// Builder accumulates the configuration and up to 255 tracks that
// CreateMuxer consumes into a Muxer. Construct one with NewBuilder.
type Builder struct {
	latencyToVideo  time.Duration
	sendFrequencyHz uint8
	videoFrameTime  time.Duration
	tracks          []trackState
}

// NewBuilder starts a MuxerBuilder with the given immutable muxer
// configuration. sendFrequencyHz must be > 0; it is not checked here, and a
// zero value gives the muxer a non-finite chunk period.
func NewBuilder(latencyToVideo time.Duration, sendFrequencyHz uint8, videoFrameTime time.Duration) *Builder {
	return &Builder{
		latencyToVideo:  latencyToVideo,
		sendFrequencyHz: sendFrequencyHz,
		videoFrameTime:  videoFrameTime,
	}
}

// AddTrack appends a subtitle track's configuration. It fails with
// TooManyTracksError once 255 tracks are already present, returning the
// passed-in strings inside the error so the caller can recover them.
func (b *Builder) AddTrack(
	default_, autoselect, forced bool,
	name, language WebvttString,
	assocLanguage, characteristics *WebvttString,
) (*Builder, error) {
	if len(b.tracks) == maxTracks {
		return nil, &TooManyTracksError{
			Name:            name,
			Language:        language,
			AssocLanguage:   assocLanguage,
			Characteristics: characteristics,
		}
	}
	b.tracks = append(b.tracks, trackState{
		config: TrackConfig{
			Default:         default_,
			Autoselect:      autoselect,
			Forced:          forced,
			Name:            name,
			Language:        language,
			AssocLanguage:   assocLanguage,
			Characteristics: characteristics,
		},
	})
	return b, nil
}

// CreateMuxer consumes the builder and returns the Muxer. The builder must
// not be used again afterwards.
func (b *Builder) CreateMuxer() *Muxer {
	return &Muxer{
		latencyToVideo:  b.latencyToVideo,
		sendFrequencyHz: b.sendFrequencyHz,
		videoFrameTime:  b.videoFrameTime,
		tracks:          b.tracks,
	}
}
