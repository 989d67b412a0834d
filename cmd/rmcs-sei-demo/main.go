// Command rmcs-sei-demo streams a synthetic H.264 sample track over a
// WebRTC PeerConnection, splicing WebVTT subtitle cues into the
// bytestream as SEI NAL units. It replays canned sample frames rather
// than capturing a live camera, keeping the muxer itself in the hot
// path of an otherwise ordinary streaming backend.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"webvtt-sei-mux/muxer"
)

func main() {
	var (
		mqttBroker   = flag.String("mqtt-broker", "localhost", "MQTT broker host")
		mqttPort     = flag.Int("mqtt-port", 1883, "MQTT broker port")
		mqttUsername = flag.String("mqtt-username", "", "MQTT username")
		mqttPassword = flag.String("mqtt-password", "", "MQTT password")
		clientID     = flag.String("mqtt-client-id", "rmcs-sei-demo", "MQTT client id")
		baseTopic    = flag.String("mqtt-base-topic", "rmcs-sei-demo/session", "MQTT base topic for signalling")
		sampleDir    = flag.String("sample-dir", "testdata/sample-frames", "directory of length-prefixed .h264 sample frames")
		latencyMs    = flag.Uint("latency-ms", 500, "WebVTT chunk latency-to-video, in milliseconds")
		sendHz       = flag.Uint("hz", 2, "WebVTT chunk send frequency, in Hz")
		frameMs      = flag.Uint("frame-ms", 33, "nominal video frame duration, in milliseconds")
		trackName    = flag.String("track-name", "English", "name of the default subtitle track")
		trackLang    = flag.String("track-language", "en", "BCP-47 language of the default subtitle track")
	)
	flag.Parse()

	mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
	mqtt.CRITICAL = log.New(os.Stdout, "[CRITICAL] ", 0)
	mqtt.WARN = log.New(os.Stdout, "[WARN] ", 0)

	name, err := muxer.NewWebvttString(*trackName)
	if err != nil {
		log.Fatalf("invalid -track-name: %v", err)
	}
	language, err := muxer.NewWebvttString(*trackLang)
	if err != nil {
		log.Fatalf("invalid -track-language: %v", err)
	}

	builder := muxer.NewBuilder(
		time.Duration(*latencyMs)*time.Millisecond,
		uint8(*sendHz),
		time.Duration(*frameMs)*time.Millisecond,
	)
	builder, err = builder.AddTrack(true, true, false, name, language, nil, nil)
	if err != nil {
		log.Fatalf("failed to add default subtitle track: %v", err)
	}
	m := builder.CreateMuxer()

	streamer, err := newVideoStreamer(m)
	if err != nil {
		log.Fatalf("failed to create video streamer: %v", err)
	}
	if err := streamer.loadSampleFrames(*sampleDir); err != nil {
		log.Printf("WARNING: failed to load sample frames from %s: %v", *sampleDir, err)
	}

	rtcManager, err := newWebRTCManager(streamer)
	if err != nil {
		log.Fatalf("failed to create WebRTC manager: %v", err)
	}
	defer rtcManager.Close()

	signaling := newSignalingClient(signalingConfig{
		broker:    *mqttBroker,
		port:      *mqttPort,
		username:  *mqttUsername,
		password:  *mqttPassword,
		clientID:  *clientID,
		baseTopic: *baseTopic,
	}, rtcManager, m)

	if err := signaling.Connect(); err != nil {
		log.Fatalf("failed to connect to MQTT broker: %v", err)
	}
	defer signaling.Disconnect()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Println("rmcs-sei-demo running. Press Ctrl+C to exit...")
	<-sigChan

	log.Println("shutting down...")
}
