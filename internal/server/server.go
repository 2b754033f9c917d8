// ABOUTME: WebSocket control bridge: transport commands in, state out
// ABOUTME: Periodic transport and meter broadcasts to connected observers
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/glasswing-audio/glasswing/internal/discovery"
	"github.com/glasswing-audio/glasswing/internal/protocol"
	"github.com/glasswing-audio/glasswing/internal/session"
)

const (
	// broadcastInterval paces transport and meter pushes to observers
	broadcastInterval = 100 * time.Millisecond

	// outboundDepth bounds queued messages per client; slow readers drop
	outboundDepth = 64

	writeTimeout = 10 * time.Second
)

// Config holds server creation parameters
type Config struct {
	Name       string
	Port       int
	EnableMDNS bool
	Debug      bool
}

// Client is one connected control observer
type Client struct {
	ID       string
	Name     string
	Conn     *websocket.Conn
	outbound chan protocol.Message
	capture  *captureStream
}

// Server accepts WebSocket control connections and bridges them to the
// session. Transport commands apply immediately; capture audio arrives as
// binary frames and lands on the timeline as regions.
type Server struct {
	config   Config
	serverID string
	sess     *session.Session

	httpServer *http.Server
	upgrader   websocket.Upgrader
	mdns       *discovery.Advertiser

	mu      sync.Mutex
	clients map[string]*Client

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a control server for the session
func New(config Config, sess *session.Session) *Server {
	return &Server{
		config:   config,
		serverID: uuid.New().String(),
		sess:     sess,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Designed for trusted local networks; non-browser
				// clients carry no Origin header
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
}

// Start begins serving. Blocks until Stop is called or the listener fails.
func (s *Server) Start() error {
	log.Printf("Control server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdns = discovery.NewAdvertiser(discovery.Config{
			Name: s.config.Name,
			Port: s.config.Port,
		})
		if err := s.mdns.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/control", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: mux,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop()
	}()

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down and disconnects all clients
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)

		if s.mdns != nil {
			s.mdns.Shutdown()
		}
		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpServer.Shutdown(ctx)
		}

		s.mu.Lock()
		for _, c := range s.clients {
			c.Conn.Close()
		}
		s.mu.Unlock()

		s.wg.Wait()
		log.Printf("Control server stopped")
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	log.Printf("New control connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	// First message must be the hello
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != protocol.TypeHello {
		log.Printf("Expected %s, got %q", protocol.TypeHello, msg.Type)
		return
	}
	var hello protocol.ClientHello
	if msg.Payload != nil {
		json.Unmarshal(msg.Payload, &hello)
	}

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		outbound: make(chan protocol.Message, outboundDepth),
	}
	if client.ID == "" {
		client.ID = uuid.New().String()
	}

	s.mu.Lock()
	s.clients[client.ID] = client
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, client.ID)
		s.mu.Unlock()
		s.finishCapture(client)
		log.Printf("Client %s disconnected", client.ID)
	}()

	s.send(client, protocol.TypeServerHello, protocol.ServerHello{
		ServerID:   s.serverID,
		Name:       s.config.Name,
		Version:    protocol.Version,
		SampleRate: s.sess.SampleRate(),
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s read error: %v", client.ID, err)
			}
			return
		}

		switch msgType {
		case websocket.TextMessage:
			s.handleClientMessage(client, data)
		case websocket.BinaryMessage:
			s.handleCaptureChunk(client, data)
		}
	}
}

func (s *Server) clientWriter(client *Client) {
	for {
		select {
		case msg, ok := <-client.outbound:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) handleClientMessage(client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(client, "malformed message")
		return
	}
	if s.config.Debug {
		log.Printf("[DEBUG] %s from %s", msg.Type, client.ID)
	}

	clock := s.sess.Clock()
	switch msg.Type {
	case protocol.TypePlay:
		clock.Play()
	case protocol.TypePause:
		clock.Pause()
	case protocol.TypeStop:
		clock.Stop()
	case protocol.TypeRecord:
		clock.Record()
	case protocol.TypeSeek:
		var cmd protocol.SeekCommand
		if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
			s.sendError(client, "malformed seek")
			return
		}
		clock.Seek(cmd.Seconds)
	case protocol.TypeLoop:
		var cmd protocol.LoopCommand
		if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
			s.sendError(client, "malformed loop")
			return
		}
		clock.SetLoop(cmd.Enabled, cmd.StartSeconds, cmd.EndSeconds)
	case protocol.TypeTempo:
		var cmd protocol.TempoCommand
		if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
			s.sendError(client, "malformed tempo")
			return
		}
		if cmd.BPM != 0 {
			s.sess.SetTempo(cmd.BPM)
		}
		if cmd.Numerator != 0 {
			s.sess.SetSignature(cmd.Numerator, cmd.Denominator)
		}
	case protocol.TypeCaptureStart:
		var cmd protocol.CaptureStart
		if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
			s.sendError(client, "malformed capture start")
			return
		}
		s.startCapture(client, cmd)
	case protocol.TypeCaptureStop:
		s.finishCapture(client)
	default:
		s.sendError(client, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// broadcastLoop pushes transport and meter state to every client on a
// fixed cadence
func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.broadcastState()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) broadcastState() {
	st := s.sess.Clock().Snapshot()
	bpm, sig := s.sess.Tempo()
	pos := s.sess.MusicalPosition()

	transport := protocol.TransportState{
		State:           st.PlayState().String(),
		Playing:         st.Playing,
		Recording:       st.Recording,
		PositionSeconds: st.PositionSeconds,
		LoopEnabled:     st.Loop.Enabled,
		LoopStart:       st.Loop.StartSeconds,
		LoopEnd:         st.Loop.EndSeconds,
		BPM:             bpm,
		Numerator:       sig.Numerator,
		Denominator:     sig.Denominator,
		Bar:             pos.Bar,
		Beat:            pos.Beat,
		Tick:            pos.Tick,
	}

	m := s.sess.Meter().Snapshot()
	meterMsg := protocol.MeterUpdate{
		PeakDB:           m.PeakDB,
		RMSDB:            m.RMSDB,
		LUFSMomentary:    m.LUFSMomentary,
		LUFSShortTerm:    m.LUFSShortTerm,
		LUFSIntegrated:   m.LUFSIntegrated,
		IntegratedValid:  m.LUFSIntegratedValid,
		LoudnessRangeLU:  m.LoudnessRangeLU,
		TruePeakDB:       m.TruePeakDB,
		PhaseCorrelation: m.PhaseCorrelation,
		DynamicRangeDB:   m.DynamicRangeDB,
		CrestFactorDB:    m.CrestFactorDB,
		Clipped:          m.Clipped,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		s.send(c, protocol.TypeTransportState, transport)
		s.send(c, protocol.TypeMeterUpdate, meterMsg)
	}
}

// send queues a message; slow clients lose updates rather than stall the
// broadcast
func (s *Server) send(client *Client, msgType string, payload interface{}) {
	msg, err := protocol.Envelope(msgType, payload)
	if err != nil {
		log.Printf("Failed to encode %s: %v", msgType, err)
		return
	}
	select {
	case client.outbound <- msg:
	default:
	}
}

func (s *Server) sendError(client *Client, text string) {
	s.send(client, protocol.TypeError, protocol.ErrorPayload{Message: text})
}

// ClientCount reports connected clients
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
