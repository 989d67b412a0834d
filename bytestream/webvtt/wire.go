// Package webvtt implements the bit-exact WebVTT-in-SEI wire format: two
// GUID-tagged record kinds (header and payload), each written as an SEI
// user_data_unregistered payload with a measured payload_type/payload_size
// prefix.
package webvtt

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"webvtt-sei-mux/bytestream/sink"
)

// UserDataUnregistered is the SEI payload_type for user_data_unregistered
// messages (ITU-T H.264 Table D-1).
const UserDataUnregistered = 5

// HeaderGUID and PayloadGUID tag the two WebVTT-in-SEI record kinds.
var (
	HeaderGUID  = uuid.MustParse("cc7124bd-5f1c-4592-b27a-e2d9d218ef9e")
	PayloadGUID = uuid.MustParse("a0cb4dd1-9db2-4635-a76b-1c9fefd6c37b")
)

// NumericOverflowError reports a value that doesn't fit the wire format's
// integer width for the named field.
type NumericOverflowError struct {
	Field string
	Value int64
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("%s value %d overflows its wire field", e.Field, e.Value)
}

// Track is the per-track configuration written into the header record.
// AssocLanguage and Characteristics are nil when absent.
type Track struct {
	Default         bool
	Autoselect      bool
	Forced          bool
	Name            string
	Language        string
	AssocLanguage   *string
	Characteristics *string
}

func writeCString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	_, err := w.Write([]byte{0x00})
	return err
}

func writeHeaderBody(w io.Writer, maxLatencyToVideoMs uint16, sendFrequencyHz uint8, tracks []Track) error {
	if _, err := w.Write(HeaderGUID[:]); err != nil {
		return err
	}
	var latencyBuf [2]byte
	binary.BigEndian.PutUint16(latencyBuf[:], maxLatencyToVideoMs)
	if _, err := w.Write(latencyBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{sendFrequencyHz, uint8(len(tracks))}); err != nil {
		return err
	}
	for _, track := range tracks {
		var flags uint8
		if track.Default {
			flags |= 0b1000_0000
		}
		if track.Autoselect {
			flags |= 0b0100_0000
		}
		if track.Forced {
			flags |= 0b0010_0000
		}
		if track.AssocLanguage != nil {
			flags |= 0b0001_0000
		}
		if track.Characteristics != nil {
			flags |= 0b0000_1000
		}
		if _, err := w.Write([]byte{flags}); err != nil {
			return err
		}
		if err := writeCString(w, track.Name); err != nil {
			return err
		}
		if err := writeCString(w, track.Language); err != nil {
			return err
		}
		if track.AssocLanguage != nil {
			if err := writeCString(w, *track.AssocLanguage); err != nil {
				return err
			}
		}
		if track.Characteristics != nil {
			if err := writeCString(w, *track.Characteristics); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteHeader writes the WebVTT-in-SEI header record (track_count <= 255),
// measuring its size with a CountingSink before emitting the real SEI
// payload_type/payload_size prefix and then the record itself.
func WriteHeader(w io.Writer, maxLatencyToVideo time.Duration, sendFrequencyHz uint8, tracks []Track) error {
	latencyMs := maxLatencyToVideo.Milliseconds()
	if latencyMs < 0 || latencyMs > 0xFFFF {
		return &NumericOverflowError{Field: "max_latency_to_video", Value: latencyMs}
	}
	if len(tracks) > 0xFF {
		return &NumericOverflowError{Field: "track_count", Value: int64(len(tracks))}
	}

	var counting sink.CountingSink
	if err := writeHeaderBody(&counting, uint16(latencyMs), sendFrequencyHz, tracks); err != nil {
		return err
	}
	if err := sink.WriteSEIHeader(w, UserDataUnregistered, counting.Count()); err != nil {
		return err
	}
	return writeHeaderBody(w, uint16(latencyMs), sendFrequencyHz, tracks)
}

func writePayloadBody(w io.Writer, trackIndex uint8, chunkNumber uint64, chunkVersion uint8, videoOffsetMs uint16, payload string) error {
	if _, err := w.Write(PayloadGUID[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{trackIndex}); err != nil {
		return err
	}
	var chunkBuf [8]byte
	binary.BigEndian.PutUint64(chunkBuf[:], chunkNumber)
	if _, err := w.Write(chunkBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{chunkVersion}); err != nil {
		return err
	}
	var offsetBuf [2]byte
	binary.BigEndian.PutUint16(offsetBuf[:], videoOffsetMs)
	if _, err := w.Write(offsetBuf[:]); err != nil {
		return err
	}
	return writeCString(w, payload)
}

// WritePayload writes one WebVTT-in-SEI payload record for a single track,
// measuring its size with a CountingSink the same way WriteHeader does.
func WritePayload(w io.Writer, trackIndex uint8, chunkNumber uint64, chunkVersion uint8, videoOffset time.Duration, payload string) error {
	offsetMs := videoOffset.Milliseconds()
	if offsetMs < 0 || offsetMs > 0xFFFF {
		return &NumericOverflowError{Field: "video_offset", Value: offsetMs}
	}

	var counting sink.CountingSink
	if err := writePayloadBody(&counting, trackIndex, chunkNumber, chunkVersion, uint16(offsetMs), payload); err != nil {
		return err
	}
	if err := sink.WriteSEIHeader(w, UserDataUnregistered, counting.Count()); err != nil {
		return err
	}
	return writePayloadBody(w, trackIndex, chunkNumber, chunkVersion, uint16(offsetMs), payload)
}
