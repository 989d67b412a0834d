package main

import (
	"log"

	"github.com/pion/webrtc/v4"
)

// webRTCManager owns the PeerConnection and the one video track the demo
// publishes on it: a single peer connection instead of a pool, since
// this demo serves one viewer at a time.
type webRTCManager struct {
	peerConnection *webrtc.PeerConnection
	videoTrack     *webrtc.TrackLocalStaticSample
	streamer       *videoStreamer
}

// iceCandidateMessage is the wire shape of an ICE candidate exchanged
// over the signalling topic, as a JSON array the way browser WebRTC
// clients expect.
type iceCandidateMessage struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex"`
}

func newWebRTCManager(streamer *videoStreamer) (*webRTCManager, error) {
	config := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	}

	peerConnection, err := webrtc.NewPeerConnection(config)
	if err != nil {
		return nil, err
	}

	videoTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:    webrtc.MimeTypeH264,
			ClockRate:   90000,
			SDPFmtpLine: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42001f",
		},
		"video",
		"stream",
	)
	if err != nil {
		return nil, err
	}

	if _, err := peerConnection.AddTrack(videoTrack); err != nil {
		return nil, err
	}

	streamer.track = videoTrack

	peerConnection.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		log.Printf("ICE connection state changed: %s", state.String())
	})

	peerConnection.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("WebRTC connection state changed: %s", state.String())
		switch state {
		case webrtc.PeerConnectionStateConnected:
			streamer.start()
		case webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			streamer.stop()
		}
	})

	return &webRTCManager{
		peerConnection: peerConnection,
		videoTrack:     videoTrack,
		streamer:       streamer,
	}, nil
}

func (w *webRTCManager) ProcessOffer(offerSDP string) (string, error) {
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}

	if err := w.peerConnection.SetRemoteDescription(offer); err != nil {
		return "", err
	}
	answer, err := w.peerConnection.CreateAnswer(nil)
	if err != nil {
		return "", err
	}
	if err := w.peerConnection.SetLocalDescription(answer); err != nil {
		return "", err
	}
	return answer.SDP, nil
}

func (w *webRTCManager) AddICECandidate(candidateData iceCandidateMessage) error {
	candidate := webrtc.ICECandidateInit{
		Candidate:     candidateData.Candidate,
		SDPMid:        &candidateData.SDPMid,
		SDPMLineIndex: &candidateData.SDPMLineIndex,
	}
	return w.peerConnection.AddICECandidate(candidate)
}

func (w *webRTCManager) SetupICECandidateHandler(handler func(*webrtc.ICECandidate)) {
	w.peerConnection.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate != nil {
			handler(candidate)
		}
	})
}

func (w *webRTCManager) Close() error {
	if w.peerConnection == nil {
		return nil
	}
	return w.peerConnection.Close()
}
