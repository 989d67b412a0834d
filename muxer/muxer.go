package muxer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"webvtt-sei-mux/bytestream/webvtt"
)

// Muxer holds immutable scheduling configuration plus mutable per-track
// cue state, a reused text buffer, and the chunk counter, all guarded by a
// single mutex so AddCue and TryMuxIntoBytestream can be called from
// different goroutines (config/cue producer vs. the encoder thread).
type Muxer struct {
	latencyToVideo  time.Duration
	sendFrequencyHz uint8
	videoFrameTime  time.Duration

	mu                  sync.Mutex
	tracks              []trackState
	webvttBuffer        strings.Builder
	nextChunkNumber     uint64
	firstVideoTimestamp *time.Duration
}

// AddCue inserts a cue into track's queue at the position that keeps the
// queue sorted ascending by StartTime; equal start times keep insertion
// order (stable).
func (m *Muxer) AddCue(track uint8, startTime, duration time.Duration, text WebvttString) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int(track) >= len(m.tracks) {
		return &InvalidTrackIndexError{Track: track}
	}
	cues := m.tracks[track].cues
	index := sort.Search(len(cues), func(i int) bool {
		return cues[i].StartTime > startTime
	})
	cues = append(cues, Cue{})
	copy(cues[index+1:], cues[index:])
	cues[index] = Cue{StartTime: startTime, Duration: duration, Text: text}
	m.tracks[track].cues = cues
	return nil
}

// TryMuxIntoBytestream writes a header record (if addHeader) and, if a
// chunk is due at video_timestamp, one payload record per track, advancing
// the chunk counter by at most one. It reports whether anything was
// written for the caller to decide whether to keep the resulting NAL unit.
func (m *Muxer) TryMuxIntoBytestream(videoTimestamp time.Duration, addHeader bool, w io.Writer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if addHeader {
		if err := m.writeHeader(w); err != nil {
			return false, err
		}
	}

	period := time.Duration(float64(time.Second) / float64(m.sendFrequencyHz))

	if m.firstVideoTimestamp == nil {
		ts := videoTimestamp
		m.firstVideoTimestamp = &ts
	}

	// next_chunk_number is narrowed to 32 bits before multiplying by period,
	// an intentional ~136-year rollover at hz=1 rather than widening the
	// arithmetic and guessing at unstated intent (see design notes).
	nextChunkWebvttTimestamp := time.Duration(uint32(m.nextChunkNumber)) * period
	nextChunkVideoTimestamp := *m.firstVideoTimestamp + m.latencyToVideo + nextChunkWebvttTimestamp

	if nextChunkVideoTimestamp > videoTimestamp+2*m.videoFrameTime {
		return addHeader, nil
	}

	chunkNumber := m.nextChunkNumber
	videoOffset := videoTimestamp - (*m.firstVideoTimestamp + nextChunkWebvttTimestamp)
	for trackIndex := range m.tracks {
		payload := m.consumeCuesIntoChunk(trackIndex, nextChunkWebvttTimestamp, period)
		if err := webvtt.WritePayload(w, uint8(trackIndex), chunkNumber, 0, videoOffset, payload); err != nil {
			return false, err
		}
	}
	m.nextChunkNumber++
	return true, nil
}

func (m *Muxer) writeHeader(w io.Writer) error {
	wireTracks := make([]webvtt.Track, len(m.tracks))
	for i, t := range m.tracks {
		wireTracks[i] = webvtt.Track{
			Default:         t.config.Default,
			Autoselect:      t.config.Autoselect,
			Forced:          t.config.Forced,
			Name:            t.config.Name.String(),
			Language:        t.config.Language.String(),
			AssocLanguage:   webvttStringPtr(t.config.AssocLanguage),
			Characteristics: webvttStringPtr(t.config.Characteristics),
		}
	}
	return webvtt.WriteHeader(w, m.latencyToVideo, m.sendFrequencyHz, wireTracks)
}

func webvttStringPtr(s *WebvttString) *string {
	if s == nil {
		return nil
	}
	v := s.String()
	return &v
}

// consumeCuesIntoChunk pops expired cues (those that end before chunkStart)
// off the front of the track's queue, then renders every cue overlapping
// [chunkStart, chunkStart+period] into the muxer's reused text buffer.
func (m *Muxer) consumeCuesIntoChunk(trackIndex int, chunkStart, period time.Duration) string {
	track := &m.tracks[trackIndex]
	for len(track.cues) > 0 && track.cues[0].StartTime+track.cues[0].Duration < chunkStart {
		track.cues = track.cues[1:]
	}

	m.webvttBuffer.Reset()
	chunkEnd := chunkStart + period
	for _, cue := range track.cues {
		if cue.StartTime > chunkEnd {
			break
		}
		cueStart := cue.StartTime
		if cueStart < chunkStart {
			cueStart = chunkStart
		}
		cueEnd := cue.StartTime + cue.Duration
		if cueEnd > chunkEnd {
			cueEnd = chunkEnd
		}
		fmt.Fprintf(&m.webvttBuffer, "%s --> %s\n%s\n\n",
			formatTimestamp(cueStart), formatTimestamp(cueEnd), cue.Text.String())
	}
	return m.webvttBuffer.String()
}

func formatTimestamp(d time.Duration) string {
	totalMs := d.Milliseconds()
	totalSecs := totalMs / 1000
	ms := totalMs % 1000
	hours := totalSecs / 3600
	minutes := totalSecs % 3600 / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms)
}
