// ABOUTME: WebSocket endpoint accepting packet streams from bridge sessions
// ABOUTME: Reads the session hello, then hands each packet to a per-session writer
package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ReceiverConfig holds receiver configuration
type ReceiverConfig struct {
	// NewWriter opens the packet writer for a session. The receiver closes
	// it when the session ends.
	NewWriter func(h Hello) (PacketWriter, error)
}

// ErrInvalidSession is returned for a hello whose session is not a canonical uuid
var ErrInvalidSession = errors.New("invalid session id")

// SessionStats reports packets received on one session
type SessionStats struct {
	ID      string
	Codec   string
	Packets uint64
	Bytes   uint64
	Active  bool
}

// Receiver is an http.Handler for WebSocketWriter connections
type Receiver struct {
	config   ReceiverConfig
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*SessionStats
	wg       sync.WaitGroup
}

// NewReceiver creates a receiver
func NewReceiver(config ReceiverConfig) (*Receiver, error) {
	if config.NewWriter == nil {
		return nil, ErrNoWriter
	}
	return &Receiver{
		config: config,
		upgrader: websocket.Upgrader{
			// Bridges are not browsers; they send no Origin header
			CheckOrigin: func(r *http.Request) bool { return r.Header.Get("Origin") == "" },
		},
		sessions: make(map[string]*SessionStats),
	}, nil
}

// ServeHTTP upgrades the request and serves one session until it closes
func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New bridge connection from %s", req.RemoteAddr)

	r.wg.Add(1)
	defer r.wg.Done()
	if err := r.handleConnection(conn); err != nil {
		log.Printf("Bridge session from %s ended: %v", req.RemoteAddr, err)
	}
}

func (r *Receiver) handleConnection(conn *websocket.Conn) error {
	defer conn.Close()

	kind, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("error reading hello: %w", err)
	}
	if kind != websocket.TextMessage {
		return errors.New("expected hello text message")
	}

	var hello Hello
	if err := json.Unmarshal(data, &hello); err != nil {
		return fmt.Errorf("error unmarshaling hello: %w", err)
	}
	if hello.Type != HelloType {
		return fmt.Errorf("expected %s, got %q", HelloType, hello.Type)
	}
	if err := validSession(hello.Session); err != nil {
		return err
	}

	writer, err := r.config.NewWriter(hello)
	if err != nil {
		return fmt.Errorf("failed to open writer: %w", err)
	}
	defer writer.Close()

	stats := r.addSession(hello)
	defer r.endSession(stats)
	log.Printf("Session %s started (codec %s)", hello.Session, hello.Codec)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("websocket error: %w", err)
			}
			log.Printf("Session %s closed after %d packets", hello.Session, r.packets(stats))
			return nil
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		p, err := DecodePacketMessage(data)
		if err != nil {
			log.Printf("Session %s: dropping message: %v", hello.Session, err)
			continue
		}
		if err := writer.WritePacket(p); err != nil {
			return err
		}

		r.mu.Lock()
		stats.Packets++
		stats.Bytes += uint64(len(p.Data))
		r.mu.Unlock()
	}
}

func (r *Receiver) addSession(h Hello) *SessionStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &SessionStats{ID: h.Session, Codec: h.Codec, Active: true}
	r.sessions[h.Session] = stats
	return stats
}

func (r *Receiver) endSession(s *SessionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Active = false
}

// validSession accepts only the lowercase canonical uuid form writers
// generate; session writers may use the ID as a file name.
func validSession(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: %q", ErrInvalidSession, id)
	}
	return nil
}

func (r *Receiver) packets(s *SessionStats) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return s.Packets
}

// Session returns counters for a session seen by this receiver
func (r *Receiver) Session(id string) (SessionStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return SessionStats{}, false
	}
	return *s, true
}

// Sessions returns counters for every session seen, ordered by ID
func (r *Receiver) Sessions() []SessionStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionStats, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Wait blocks until every served session has ended
func (r *Receiver) Wait() {
	r.wg.Wait()
}
