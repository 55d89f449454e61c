// ABOUTME: Packet writer streaming encoded frames to a WebSocket receiver
// ABOUTME: Sends a JSON hello then one binary message per packet
package sink

import (
	"encoding/binary"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// PacketMessageType tags binary packet messages
	PacketMessageType = 4

	// DefaultWebSocketPath is the receiver endpoint path
	DefaultWebSocketPath = "/pcmbridge"

	// HelloType is the type of the first text message on a connection
	HelloType = "bridge/hello"

	// packetMessageHeader is [type:1][stream:4][timestamp:8][duration:8]
	packetMessageHeader = 21

	writeTimeout = 5 * time.Second
)

// Hello announces a bridge session to a receiver
type Hello struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Codec   string `json:"codec"`
}

// WebSocketConfig holds WebSocket writer configuration
type WebSocketConfig struct {
	Addr    string // host:port
	Path    string
	Codec   string
	Session string // generated when empty
}

// WebSocketWriter sends packets over a WebSocket connection
type WebSocketWriter struct {
	conn    *websocket.Conn
	session string
	mu      sync.Mutex
	closed  bool
}

// DialWebSocket connects to a receiver and sends the session hello
func DialWebSocket(config WebSocketConfig) (*WebSocketWriter, error) {
	if config.Path == "" {
		config.Path = DefaultWebSocketPath
	}
	if config.Session == "" {
		config.Session = uuid.New().String()
	}

	u := url.URL{Scheme: "ws", Host: config.Addr, Path: config.Path}
	log.Printf("Connecting to packet receiver at %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	hello := Hello{Type: HelloType, Session: config.Session, Codec: config.Codec}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send bridge/hello: %w", err)
	}

	return &WebSocketWriter{conn: conn, session: config.Session}, nil
}

// Session returns the session ID sent in the hello
func (w *WebSocketWriter) Session() string {
	return w.session
}

// WritePacket sends one binary packet message
func (w *WebSocketWriter) WritePacket(p Packet) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("connection closed")
	}

	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := w.conn.WriteMessage(websocket.BinaryMessage, EncodePacketMessage(p)); err != nil {
		return fmt.Errorf("failed to send packet: %w", err)
	}
	return nil
}

// Close sends a close frame and closes the connection
func (w *WebSocketWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		log.Printf("Error sending close frame: %v", err)
	}
	return w.conn.Close()
}

// EncodePacketMessage builds the binary message for a packet
func EncodePacketMessage(p Packet) []byte {
	// Binary format: [type:1][stream:4][timestamp:8][duration:8][data:N]
	msg := make([]byte, packetMessageHeader+len(p.Data))
	msg[0] = PacketMessageType
	binary.BigEndian.PutUint32(msg[1:5], p.Stream)
	binary.BigEndian.PutUint64(msg[5:13], uint64(p.Timestamp))
	binary.BigEndian.PutUint64(msg[13:21], uint64(p.Duration))
	copy(msg[packetMessageHeader:], p.Data)
	return msg
}

// DecodePacketMessage parses a binary packet message
func DecodePacketMessage(msg []byte) (Packet, error) {
	if len(msg) < packetMessageHeader {
		return Packet{}, fmt.Errorf("packet message too short: %d bytes", len(msg))
	}
	if msg[0] != PacketMessageType {
		return Packet{}, fmt.Errorf("unexpected message type: %d", msg[0])
	}

	data := make([]byte, len(msg)-packetMessageHeader)
	copy(data, msg[packetMessageHeader:])
	return Packet{
		Stream:    binary.BigEndian.Uint32(msg[1:5]),
		Timestamp: audio.Ticks(binary.BigEndian.Uint64(msg[5:13])),
		Duration:  audio.Ticks(binary.BigEndian.Uint64(msg[13:21])),
		Data:      data,
	}, nil
}
