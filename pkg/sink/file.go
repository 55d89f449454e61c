// ABOUTME: Packet writer producing a length-prefixed packet file
// ABOUTME: Each record is a big-endian header followed by the encoded frame
package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
)

const (
	// FileHeaderSize is the record header: [stream:4][timestamp:8][duration:8][length:4]
	FileHeaderSize = 24

	// MaxPacketSize bounds one record's payload
	MaxPacketSize = 1 << 20
)

// ErrPacketTooLarge is returned for payloads above MaxPacketSize
var ErrPacketTooLarge = errors.New("packet too large")

// FileWriter writes packets as length-prefixed records
type FileWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	hdr    [FileHeaderSize]byte
}

// NewFileWriter writes records to w. If w is an io.Closer, Close closes it.
func NewFileWriter(w io.Writer) *FileWriter {
	fw := &FileWriter{w: w}
	if c, ok := w.(io.Closer); ok {
		fw.closer = c
	}
	return fw
}

// CreateFile creates or truncates path and returns a writer for it
func CreateFile(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create packet file: %w", err)
	}
	return NewFileWriter(f), nil
}

// WritePacket appends one record
func (fw *FileWriter) WritePacket(p Packet) error {
	if len(p.Data) > MaxPacketSize {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(p.Data))
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	binary.BigEndian.PutUint32(fw.hdr[0:4], p.Stream)
	binary.BigEndian.PutUint64(fw.hdr[4:12], uint64(p.Timestamp))
	binary.BigEndian.PutUint64(fw.hdr[12:20], uint64(p.Duration))
	binary.BigEndian.PutUint32(fw.hdr[20:24], uint32(len(p.Data)))

	if _, err := fw.w.Write(fw.hdr[:]); err != nil {
		return fmt.Errorf("failed to write packet header: %w", err)
	}
	if _, err := fw.w.Write(p.Data); err != nil {
		return fmt.Errorf("failed to write packet data: %w", err)
	}
	return nil
}

// Close closes the underlying writer if it is closable
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closer == nil {
		return nil
	}
	err := fw.closer.Close()
	fw.closer = nil
	return err
}

// ReadPacket reads one record written by FileWriter. It returns io.EOF at a
// clean end of input and io.ErrUnexpectedEOF for a truncated record.
func ReadPacket(r io.Reader) (Packet, error) {
	var hdr [FileHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Packet{}, err
	}

	size := binary.BigEndian.Uint32(hdr[20:24])
	if size > MaxPacketSize {
		return Packet{}, fmt.Errorf("%w: header declares %d bytes", ErrPacketTooLarge, size)
	}

	p := Packet{
		Stream:    binary.BigEndian.Uint32(hdr[0:4]),
		Timestamp: audio.Ticks(binary.BigEndian.Uint64(hdr[4:12])),
		Duration:  audio.Ticks(binary.BigEndian.Uint64(hdr[12:20])),
		Data:      make([]byte, size),
	}
	if _, err := io.ReadFull(r, p.Data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Packet{}, err
	}
	return p, nil
}
