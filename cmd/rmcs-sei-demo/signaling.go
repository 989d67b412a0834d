package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pion/webrtc/v4"

	"webvtt-sei-mux/muxer"
)

type signalingConfig struct {
	broker    string
	port      int
	username  string
	password  string
	clientID  string
	baseTopic string
}

// signalingClient carries SDP offer/answer and ICE candidate exchange
// over MQTT, plus a subtitle-track control topic: remote callers add
// cues to the running muxer by publishing JSON onto
// <baseTopic>/subtitle-track.
type signalingClient struct {
	cfg           signalingConfig
	client        mqtt.Client
	rtc           *webRTCManager
	mux           *muxer.Muxer
	mu            sync.Mutex
	currentPeerID string
}

func newSignalingClient(cfg signalingConfig, rtc *webRTCManager, mux *muxer.Muxer) *signalingClient {
	return &signalingClient{cfg: cfg, rtc: rtc, mux: mux}
}

// subtitleTrackMessage is the payload of the subtitle-track control
// topic. add_cue is the only operation supported once the muxer has
// been created: tracks are added on the Builder, which CreateMuxer
// consumes, so new tracks cannot be registered after CreateMuxer runs.
type subtitleTrackMessage struct {
	Op         string `json:"op"`
	Track      uint8  `json:"track"`
	StartMs    int64  `json:"start_ms"`
	DurationMs int64  `json:"duration_ms"`
	Text       string `json:"text"`
}

func (s *signalingClient) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", s.cfg.broker, s.cfg.port))
	opts.SetClientID(s.cfg.clientID)
	opts.SetUsername(s.cfg.username)
	opts.SetPassword(s.cfg.password)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Println("connected to MQTT broker")

		s.rtc.SetupICECandidateHandler(func(candidate *webrtc.ICECandidate) {
			s.publishICECandidate(client, candidate)
		})

		s.subscribeOffers(client)
		s.subscribeRemoteICECandidates(client)
		s.subscribeSubtitleTrack(client)
	})

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	})

	s.client = mqtt.NewClient(opts)
	token := s.client.Connect()
	token.Wait()
	return token.Error()
}

func (s *signalingClient) Disconnect() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
}

func (s *signalingClient) publishICECandidate(client mqtt.Client, candidate *webrtc.ICECandidate) {
	if candidate == nil {
		return
	}
	s.mu.Lock()
	peerID := s.currentPeerID
	s.mu.Unlock()
	if peerID == "" {
		return
	}

	payload, err := json.Marshal([]map[string]interface{}{{
		"candidate":     candidate.ToJSON().Candidate,
		"sdpMid":        candidate.ToJSON().SDPMid,
		"sdpMLineIndex": candidate.ToJSON().SDPMLineIndex,
	}})
	if err != nil {
		log.Printf("failed to marshal ICE candidate: %v", err)
		return
	}

	topic := fmt.Sprintf("%s/%s/candidate/local", s.cfg.baseTopic, peerID)
	client.Publish(topic, 0, false, payload)
}

func (s *signalingClient) subscribeOffers(client mqtt.Client) {
	topic := fmt.Sprintf("%s/+/offer", s.cfg.baseTopic)
	token := client.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		s.mu.Lock()
		s.currentPeerID = peerIDFromTopic(msg.Topic(), s.cfg.baseTopic)
		s.mu.Unlock()

		answerSDP, err := s.rtc.ProcessOffer(string(msg.Payload()))
		if err != nil {
			log.Printf("failed to process offer: %v", err)
			return
		}

		answerTopic := fmt.Sprintf("%s/%s/answer", s.cfg.baseTopic, s.currentPeerID)
		client.Publish(answerTopic, 0, false, []byte(answerSDP))
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("failed to subscribe to %s: %v", topic, token.Error())
	}
}

func (s *signalingClient) subscribeRemoteICECandidates(client mqtt.Client) {
	topic := fmt.Sprintf("%s/+/candidate/remote", s.cfg.baseTopic)
	token := client.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		var candidates []iceCandidateMessage
		if err := json.Unmarshal(msg.Payload(), &candidates); err != nil {
			log.Printf("failed to parse ICE candidates: %v", err)
			return
		}
		for _, c := range candidates {
			if err := s.rtc.AddICECandidate(c); err != nil {
				log.Printf("failed to add ICE candidate: %v", err)
			}
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("failed to subscribe to %s: %v", topic, token.Error())
	}
}

// subscribeSubtitleTrack subscribes to the one control topic with no
// SDP/ICE equivalent: pushing live cues into the running muxer.
func (s *signalingClient) subscribeSubtitleTrack(client mqtt.Client) {
	topic := fmt.Sprintf("%s/subtitle-track", s.cfg.baseTopic)
	token := client.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		var m subtitleTrackMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("failed to parse subtitle-track message: %v", err)
			return
		}
		switch m.Op {
		case "add_cue":
			text, err := muxer.NewWebvttString(m.Text)
			if err != nil {
				log.Printf("rejected cue text: %v", err)
				return
			}
			err = s.mux.AddCue(m.Track, time.Duration(m.StartMs)*time.Millisecond, time.Duration(m.DurationMs)*time.Millisecond, text)
			if err != nil {
				log.Printf("failed to add cue: %v", err)
			}
		case "add_track":
			log.Println("add_track is rejected once the muxer has started: configure tracks with -track-name/-track-language at startup")
		default:
			log.Printf("unknown subtitle-track op: %q", m.Op)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("failed to subscribe to %s: %v", topic, token.Error())
	}
}

func peerIDFromTopic(topic, baseTopic string) string {
	prefix := baseTopic + "/"
	if !strings.HasPrefix(topic, prefix) {
		return ""
	}
	rest := topic[len(prefix):]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}
