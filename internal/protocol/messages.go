// ABOUTME: Control bridge message type definitions
// ABOUTME: JSON envelopes for transport, tempo, meter, and capture traffic
package protocol

import "encoding/json"

// Version is the control protocol revision
const Version = 1

// Message is the top-level wrapper for all control messages. Payload stays
// raw on receive so each handler decodes its own type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope builds an outgoing message with an encoded payload
func Envelope(msgType string, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: data}, nil
}

// Message types sent by clients
const (
	TypeHello        = "client/hello"
	TypePlay         = "transport/play"
	TypePause        = "transport/pause"
	TypeStop         = "transport/stop"
	TypeRecord       = "transport/record"
	TypeSeek         = "transport/seek"
	TypeLoop         = "transport/loop"
	TypeTempo        = "tempo/set"
	TypeCaptureStart = "capture/start"
	TypeCaptureStop  = "capture/stop"
)

// Message types sent by the server
const (
	TypeServerHello     = "server/hello"
	TypeTransportState  = "transport/state"
	TypeMeterUpdate     = "meter/update"
	TypeCaptureStarted  = "capture/started"
	TypeCaptureStopped  = "capture/stopped"
	TypeError           = "error"
)

// ClientHello opens a control session
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ServerHello answers a client hello
type ServerHello struct {
	ServerID   string `json:"server_id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	SampleRate int    `json:"sample_rate"`
}

// SeekCommand repositions the playhead
type SeekCommand struct {
	Seconds float64 `json:"seconds"`
}

// LoopCommand sets the loop window
type LoopCommand struct {
	Enabled      bool    `json:"enabled"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// TempoCommand updates tempo and optionally the signature
type TempoCommand struct {
	BPM         float64 `json:"bpm,omitempty"`
	Numerator   int     `json:"numerator,omitempty"`
	Denominator int     `json:"denominator,omitempty"`
}

// CaptureStart announces an incoming capture stream. Audio follows as
// binary frames, one encoded packet per frame.
type CaptureStart struct {
	Codec      string `json:"codec"` // "opus" or "pcm16"
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// CaptureStarted confirms a capture stream and names its track
type CaptureStarted struct {
	TrackID string `json:"track_id"`
}

// CaptureStopped reports the placed region after a capture ends
type CaptureStopped struct {
	TrackID      string  `json:"track_id"`
	RegionID     string  `json:"region_id"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// TransportState mirrors the clock plus the derived musical position
type TransportState struct {
	State           string  `json:"state"`
	Playing         bool    `json:"playing"`
	Recording       bool    `json:"recording"`
	PositionSeconds float64 `json:"position_seconds"`
	LoopEnabled     bool    `json:"loop_enabled"`
	LoopStart       float64 `json:"loop_start"`
	LoopEnd         float64 `json:"loop_end"`
	BPM             float64 `json:"bpm"`
	Numerator       uint    `json:"numerator"`
	Denominator     uint    `json:"denominator"`
	Bar             int     `json:"bar"`
	Beat            int     `json:"beat"`
	Tick            int     `json:"tick"`
}

// MeterUpdate carries one metering snapshot to observers
type MeterUpdate struct {
	PeakDB           [2]float64 `json:"peak_db"`
	RMSDB            [2]float64 `json:"rms_db"`
	LUFSMomentary    float64    `json:"lufs_momentary"`
	LUFSShortTerm    float64    `json:"lufs_short_term"`
	LUFSIntegrated   float64    `json:"lufs_integrated"`
	IntegratedValid  bool       `json:"integrated_valid"`
	LoudnessRangeLU  float64    `json:"loudness_range_lu"`
	TruePeakDB       float64    `json:"true_peak_db"`
	PhaseCorrelation float64    `json:"phase_correlation"`
	DynamicRangeDB   float64    `json:"dynamic_range_db"`
	CrestFactorDB    float64    `json:"crest_factor_db"`
	Clipped          [2]bool    `json:"clipped"`
}

// ErrorPayload reports a request failure to the client
type ErrorPayload struct {
	Message string `json:"message"`
}
