package rover

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
)

// Command identifiers on the rover TC link
const (
	cmdManualDrive = 0x06
	cmdStop        = 0x00
)

// ErrSenderClosed is returned when a command is issued after Close.
var ErrSenderClosed = errors.New("rover command sender is closed")

// CommandSender is the low-latency motion channel to the vehicle.
// Delivery is best-effort by design: no retry, no acknowledgment. The
// interface exists so a reliable-delivery strategy can be added without
// touching callers.
type CommandSender interface {
	// ManualDrive issues a manual-drive command with the given velocities.
	ManualDrive(linear, angular float64) error
	// Stop issues a hard stop.
	Stop() error
}

// EncodeManualDrive builds a manual-drive packet: command id 0x06 followed
// by linear and angular as big-endian 32-bit floats.
func EncodeManualDrive(linear, angular float64) []byte {
	packet := make([]byte, 9)
	packet[0] = cmdManualDrive
	binary.BigEndian.PutUint32(packet[1:5], math.Float32bits(float32(linear)))
	binary.BigEndian.PutUint32(packet[5:9], math.Float32bits(float32(angular)))
	return packet
}

// EncodeStop builds a stop packet: the single command id byte 0x00.
func EncodeStop() []byte {
	return []byte{cmdStop}
}

// UDPSender sends rover commands over a connected UDP socket.
type UDPSender struct {
	conn   net.Conn
	mu     sync.Mutex
	closed bool
}

var _ CommandSender = (*UDPSender)(nil)

// NewUDPSender opens a UDP socket to the rover TC address ("host:port").
func NewUDPSender(address string) (*UDPSender, error) {
	conn, err := net.Dial("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rover TC address %s: %w", address, err)
	}
	return &UDPSender{conn: conn}, nil
}

// ManualDrive sends a manual-drive packet. Fire-and-forget.
func (s *UDPSender) ManualDrive(linear, angular float64) error {
	return s.send(EncodeManualDrive(linear, angular))
}

// Stop sends a stop packet. Fire-and-forget.
func (s *UDPSender) Stop() error {
	return s.send(EncodeStop())
}

func (s *UDPSender) send(packet []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSenderClosed
	}
	if _, err := s.conn.Write(packet); err != nil {
		return fmt.Errorf("failed to send rover command: %w", err)
	}
	return nil
}

// Close releases the socket. Further sends return ErrSenderClosed.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
