package muxer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustWebvttString(t *testing.T, s string) WebvttString {
	t.Helper()
	v, err := NewWebvttString(s)
	require.NoError(t, err)
	return v
}

func TestAddTrackRejectsBeyondCap(t *testing.T) {
	b := NewBuilder(0, 1, 33*time.Millisecond)
	name := mustWebvttString(t, "en")
	lang := mustWebvttString(t, "en")

	var err error
	for i := 0; i < maxTracks; i++ {
		b, err = b.AddTrack(false, false, false, name, lang, nil, nil)
		require.NoError(t, err)
	}

	before := len(b.tracks)
	rejected, err := b.AddTrack(false, false, false, name, lang, nil, nil)
	require.Error(t, err)
	require.Nil(t, rejected)
	require.Len(t, b.tracks, before)

	var tooMany *TooManyTracksError
	require.ErrorAs(t, err, &tooMany)
}

func TestCreateMuxerCarriesBuilderConfig(t *testing.T) {
	b := NewBuilder(500*time.Millisecond, 2, 33*time.Millisecond)
	name := mustWebvttString(t, "en")
	lang := mustWebvttString(t, "en")
	b, err := b.AddTrack(true, false, false, name, lang, nil, nil)
	require.NoError(t, err)

	m := b.CreateMuxer()
	require.Equal(t, 500*time.Millisecond, m.latencyToVideo)
	require.Equal(t, uint8(2), m.sendFrequencyHz)
	require.Len(t, m.tracks, 1)
}
