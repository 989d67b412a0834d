//go:build library

// This file exports the C ABI surface described by the WebVTT-in-SEI wire
// format: opaque handles for the builder, muxer and output buffer,
// NUL-terminated C strings in, a boxed byte buffer out.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import (
	"bytes"
	"time"
	"unsafe"

	"webvtt-sei-mux/bytestream/h264"
	"webvtt-sei-mux/muxer"
)

var (
	builders = newHandleTable[*muxer.Builder]()
	muxers   = newHandleTable[*muxer.Muxer]()
	buffers  = newHandleTable[[]byte]()
)

//export webvtt_create_muxer_builder
func webvtt_create_muxer_builder(latencyToVideoMs C.uint16_t, sendFrequencyHz C.uint8_t, videoFrameTimeNs C.uint64_t) C.uint64_t {
	b := muxer.NewBuilder(
		time.Duration(latencyToVideoMs)*time.Millisecond,
		uint8(sendFrequencyHz),
		time.Duration(videoFrameTimeNs)*time.Nanosecond,
	)
	return C.uint64_t(builders.put(b))
}

func cStringToWebvttString(ptr *C.char) (muxer.WebvttString, bool) {
	if ptr == nil {
		return muxer.WebvttString{}, false
	}
	s, err := muxer.NewWebvttString(C.GoString(ptr))
	if err != nil {
		return muxer.WebvttString{}, false
	}
	return s, true
}

//export webvtt_muxer_builder_add_track
func webvtt_muxer_builder_add_track(
	builderHandle C.uint64_t,
	isDefault, autoselect, forced C.bool,
	namePtr, languagePtr, assocLanguagePtr, characteristicsPtr *C.char,
) C.bool {
	builder, ok := builders.get(uint64(builderHandle))
	if !ok {
		return C.bool(false)
	}
	name, ok := cStringToWebvttString(namePtr)
	if !ok {
		return C.bool(false)
	}
	language, ok := cStringToWebvttString(languagePtr)
	if !ok {
		return C.bool(false)
	}
	var assocLanguage, characteristics *muxer.WebvttString
	if assocLanguagePtr != nil {
		s, ok := cStringToWebvttString(assocLanguagePtr)
		if !ok {
			return C.bool(false)
		}
		assocLanguage = &s
	}
	if characteristicsPtr != nil {
		s, ok := cStringToWebvttString(characteristicsPtr)
		if !ok {
			return C.bool(false)
		}
		characteristics = &s
	}
	_, err := builder.AddTrack(bool(isDefault), bool(autoselect), bool(forced), name, language, assocLanguage, characteristics)
	return C.bool(err == nil)
}

//export webvtt_muxer_builder_create_muxer
func webvtt_muxer_builder_create_muxer(builderHandle C.uint64_t) C.uint64_t {
	builder, ok := builders.get(uint64(builderHandle))
	if !ok {
		return 0
	}
	builders.delete(uint64(builderHandle))
	return C.uint64_t(muxers.put(builder.CreateMuxer()))
}

//export webvtt_muxer_free
func webvtt_muxer_free(muxerHandle C.uint64_t) {
	muxers.delete(uint64(muxerHandle))
}

//export webvtt_muxer_add_cue
func webvtt_muxer_add_cue(muxerHandle C.uint64_t, track C.uint8_t, startMs, durMs C.uint64_t, textPtr *C.char) C.bool {
	m, ok := muxers.get(uint64(muxerHandle))
	if !ok {
		return C.bool(false)
	}
	text, ok := cStringToWebvttString(textPtr)
	if !ok {
		return C.bool(false)
	}
	err := m.AddCue(uint8(track), time.Duration(startMs)*time.Millisecond, time.Duration(durMs)*time.Millisecond, text)
	return C.bool(err == nil)
}

// codecFlavor mirrors the CodecFlavor enum from the original: 0-2 select
// AVCC with a 1/2/4-byte length prefix, 3 selects Annex B.
const (
	codecFlavorAVCC1 = 0
	codecFlavorAVCC2 = 1
	codecFlavorAVCC4 = 2
	codecFlavorAnnexB = 3
)

//export webvtt_muxer_try_mux_into_bytestream
func webvtt_muxer_try_mux_into_bytestream(muxerHandle C.uint64_t, videoTimestampNs C.uint64_t, addHeader C.bool, codecFlavor C.uint8_t) C.uint64_t {
	m, ok := muxers.get(uint64(muxerHandle))
	if !ok {
		return 0
	}

	var buf bytes.Buffer
	videoTimestamp := time.Duration(videoTimestampNs) * time.Nanosecond
	written, err := muxInto(m, videoTimestamp, bool(addHeader), int(codecFlavor), &buf)
	if err != nil || !written {
		return 0
	}
	return C.uint64_t(buffers.put(buf.Bytes()))
}

func muxInto(m *muxer.Muxer, videoTimestamp time.Duration, addHeader bool, codecFlavor int, buf *bytes.Buffer) (bool, error) {
	nalHeader, err := h264.NewNalHeader(h264.NalUnitTypeSEI, 0)
	if err != nil {
		return false, err
	}

	switch codecFlavor {
	case codecFlavorAnnexB:
		annexB := h264.NewAnnexBWriter(buf)
		nalUnit, err := annexB.StartWriteNalUnit()
		if err != nil {
			return false, err
		}
		rbsp, err := nalUnit.WriteNalHeader(nalHeader)
		if err != nil {
			return false, err
		}
		written, err := m.TryMuxIntoBytestream(videoTimestamp, addHeader, rbsp)
		if err != nil {
			return false, err
		}
		if !written {
			return false, nil
		}
		if _, err := rbsp.FinishRbsp(); err != nil {
			return false, err
		}
		return true, nil
	case codecFlavorAVCC1, codecFlavorAVCC2, codecFlavorAVCC4:
		lengthSize := map[int]int{codecFlavorAVCC1: 1, codecFlavorAVCC2: 2, codecFlavorAVCC4: 4}[codecFlavor]
		avcc, err := h264.NewAVCCWriter(lengthSize, buf)
		if err != nil {
			return false, err
		}
		nalUnit := avcc.StartWriteNalUnit()
		rbsp, err := nalUnit.WriteNalHeader(nalHeader)
		if err != nil {
			return false, err
		}
		written, err := m.TryMuxIntoBytestream(videoTimestamp, addHeader, rbsp)
		if err != nil {
			return false, err
		}
		if !written {
			return false, nil
		}
		if _, err := rbsp.FinishRbsp(); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

//export webvtt_buffer_data
func webvtt_buffer_data(bufferHandle C.uint64_t) *C.uint8_t {
	data, ok := buffers.get(uint64(bufferHandle))
	if !ok || len(data) == 0 {
		return nil
	}
	return (*C.uint8_t)(unsafe.Pointer(&data[0]))
}

//export webvtt_buffer_length
func webvtt_buffer_length(bufferHandle C.uint64_t) C.size_t {
	data, ok := buffers.get(uint64(bufferHandle))
	if !ok {
		return 0
	}
	return C.size_t(len(data))
}

//export webvtt_buffer_free
func webvtt_buffer_free(bufferHandle C.uint64_t) {
	buffers.delete(uint64(bufferHandle))
}

// Required empty main for the c-shared build target.
func main() {}
