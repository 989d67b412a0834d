package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"webvtt-sei-mux/bytestream/h264"
	"webvtt-sei-mux/muxer"
)

const (
	nalTypeSPS = 7
	nalTypePPS = 8
	nalTypeIDR = 5
)

// videoStreamer replays a directory of canned, length-prefixed H.264
// frames over a WebRTC track, splicing the muxer's SEI NAL units in
// front of each frame at the muxer's own cadence. The capture source
// is canned files instead of a live camera, since there is no camera
// in this domain.
type videoStreamer struct {
	mux   *muxer.Muxer
	track *webrtc.TrackLocalStaticSample

	frameFiles  []string
	isStreaming bool
	stopChan    chan struct{}
	mu          sync.Mutex

	sps     []byte
	pps     []byte
	lastIDR []byte

	fps            uint32
	sampleDuration time.Duration
	frameCounter   int
	videoTimestamp time.Duration
	headerSent     bool
}

func newVideoStreamer(mux *muxer.Muxer) (*videoStreamer, error) {
	fps := uint32(30)
	return &videoStreamer{
		mux:            mux,
		stopChan:       make(chan struct{}),
		fps:            fps,
		sampleDuration: time.Second / time.Duration(fps),
		frameCounter:   -1,
	}, nil
}

func (v *videoStreamer) loadSampleFrames(directory string) error {
	files, err := filepath.Glob(filepath.Join(directory, "*.h264"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .h264 files found in %s", directory)
	}

	sort.Slice(files, func(i, j int) bool {
		return extractFileNumber(filepath.Base(files[i])) < extractFileNumber(filepath.Base(files[j]))
	})
	v.frameFiles = files
	log.Printf("loaded %d sample frames from %s", len(files), directory)

	return v.cacheParameterSets(files[0])
}

func extractFileNumber(filename string) int {
	parts := strings.Split(filename, "-")
	if len(parts) < 2 {
		return 0
	}
	num, _ := strconv.Atoi(strings.TrimSuffix(parts[1], ".h264"))
	return num
}

// cacheParameterSets pulls the SPS/PPS/last-IDR out of the first sample
// file so they can be resent whenever streaming (re)starts.
func (v *videoStreamer) cacheParameterSets(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, nal := range splitLengthPrefixed(data) {
		if len(nal) == 0 {
			continue
		}
		switch nal[0] & 0x1F {
		case nalTypeSPS:
			v.sps = append([]byte(nil), nal...)
		case nalTypePPS:
			v.pps = append([]byte(nil), nal...)
		case nalTypeIDR:
			v.lastIDR = append([]byte(nil), nal...)
		}
	}
	return nil
}

func splitLengthPrefixed(data []byte) [][]byte {
	var units [][]byte
	i := 0
	for i+4 <= len(data) {
		length := binary.BigEndian.Uint32(data[i : i+4])
		start := i + 4
		end := start + int(length)
		if end > len(data) {
			break
		}
		units = append(units, data[start:end])
		i = end
	}
	return units
}

func toAnnexB(nalUnits [][]byte) []byte {
	var out []byte
	startCode := []byte{0x00, 0x00, 0x00, 0x01}
	for _, nal := range nalUnits {
		out = append(out, startCode...)
		out = append(out, nal...)
	}
	return out
}

func (v *videoStreamer) start() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.isStreaming {
		return
	}
	v.isStreaming = true
	v.frameCounter = -1
	v.videoTimestamp = 0
	go v.streamLoop()
}

func (v *videoStreamer) stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.isStreaming {
		close(v.stopChan)
		v.stopChan = make(chan struct{})
		v.isStreaming = false
	}
}

func (v *videoStreamer) streamLoop() {
	if len(v.frameFiles) == 0 {
		log.Println("no sample frames loaded, nothing to stream")
		return
	}

	ticker := time.NewTicker(v.sampleDuration)
	defer ticker.Stop()

	if initial := toAnnexB([][]byte{v.sps, v.pps, v.lastIDR}); len(initial) > 4 {
		v.track.WriteSample(media.Sample{Data: initial, Duration: v.sampleDuration})
	}

	framesSent := 0
	for {
		select {
		case <-v.stopChan:
			log.Printf("stopped streaming after %d frames", framesSent)
			return
		case <-ticker.C:
			v.frameCounter = (v.frameCounter + 1) % len(v.frameFiles)
			data, err := os.ReadFile(v.frameFiles[v.frameCounter])
			if err != nil {
				log.Printf("failed to read frame %d: %v", v.frameCounter, err)
				continue
			}
			frame := toAnnexB(splitLengthPrefixed(data))

			sei, err := v.nextSEINalUnit()
			if err != nil {
				log.Printf("failed to mux subtitle chunk: %v", err)
			} else if len(sei) > 0 {
				frame = append(sei, frame...)
			}

			v.videoTimestamp += v.sampleDuration
			if err := v.track.WriteSample(media.Sample{Data: frame, Duration: v.sampleDuration}); err != nil {
				log.Printf("write sample error: %v", err)
				continue
			}
			framesSent++
		}
	}
}

// nextSEINalUnit asks the muxer for the chunk due at the current video
// timestamp, if any, and returns it as a complete Annex B NAL unit
// (start code through the RBSP trailing bit). The first call also asks
// for the header record, so it returns a NAL unit even when no chunk is
// due. It returns a nil slice, not an error, when the muxer wrote nothing.
func (v *videoStreamer) nextSEINalUnit() ([]byte, error) {
	var buf bytes.Buffer
	annexB := h264.NewAnnexBWriter(&buf)
	nalUnit, err := annexB.StartWriteNalUnit()
	if err != nil {
		return nil, err
	}
	nalHeader, err := h264.NewNalHeader(h264.NalUnitTypeSEI, 0)
	if err != nil {
		return nil, err
	}
	rbsp, err := nalUnit.WriteNalHeader(nalHeader)
	if err != nil {
		return nil, err
	}

	addHeader := !v.headerSent
	written, err := v.mux.TryMuxIntoBytestream(v.videoTimestamp, addHeader, rbsp)
	if err != nil {
		return nil, err
	}
	v.headerSent = true
	if !written {
		return nil, nil
	}
	if _, err := rbsp.FinishRbsp(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
