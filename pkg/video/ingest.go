package video

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	customlog "github.com/leo-teleop/bridge/pkg/log"
	"github.com/leo-teleop/bridge/pkg/state"
)

// maxFrameSize bounds a single frame payload. A length prefix above this
// is treated as a framing error and terminates the producer connection.
const maxFrameSize = 16 << 20

// ReadFrame reads one length-prefixed frame: a 4-byte big-endian unsigned
// length followed by exactly that many payload bytes.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame length %d exceeds limit %d", size, maxFrameSize)
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// Ingestor accepts frame-producer connections on a TCP port and overwrites
// the latest-frame slot with each completely parsed frame. At most one
// producer is active at a time; a second connection is rejected while one
// is active. A producer disconnect leaves the last frame in place.
type Ingestor struct {
	frames *state.FrameStore
	logger customlog.Logger

	// OnProducerChange, if set, is called when a producer connects or
	// disconnects. Used by the status service.
	OnProducerChange func(connected bool)

	ln     net.Listener
	mu     sync.Mutex
	active bool
}

// NewIngestor creates a video ingestor writing into frames.
func NewIngestor(frames *state.FrameStore, logger customlog.Logger) *Ingestor {
	return &Ingestor{frames: frames, logger: logger}
}

// Listen binds the ingestion socket.
func (in *Ingestor) Listen(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to bind video ingestion port %d: %w", port, err)
	}
	in.ln = ln
	in.logger.Infof("Video ingestion listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound listener address. Listen must have succeeded.
func (in *Ingestor) Addr() net.Addr {
	return in.ln.Addr()
}

// Run accepts producer connections until ctx is cancelled. A read error on
// the active producer ends only that connection; the listener keeps
// accepting.
func (in *Ingestor) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		in.ln.Close()
	}()

	for {
		conn, err := in.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			in.logger.Errorf("Video ingestion accept failed: %v", err)
			return
		}

		if !in.claimProducer() {
			in.logger.Warnf("Rejecting second video producer from %s", conn.RemoteAddr())
			conn.Close()
			continue
		}

		go in.handleProducer(conn)
	}
}

func (in *Ingestor) claimProducer() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.active {
		return false
	}
	in.active = true
	return true
}

func (in *Ingestor) releaseProducer() {
	in.mu.Lock()
	in.active = false
	in.mu.Unlock()
}

// handleProducer reads frames from one producer until a read or framing
// error, installing each complete frame atomically.
func (in *Ingestor) handleProducer(conn net.Conn) {
	in.logger.Infof("Video producer connected: %s", conn.RemoteAddr())
	if in.OnProducerChange != nil {
		in.OnProducerChange(true)
	}
	defer func() {
		conn.Close()
		in.releaseProducer()
		if in.OnProducerChange != nil {
			in.OnProducerChange(false)
		}
	}()

	for {
		frame, err := ReadFrame(conn)
		if err != nil {
			if err != io.EOF {
				in.logger.Warnf("Video producer %s dropped: %v", conn.RemoteAddr(), err)
			} else {
				in.logger.Infof("Video producer %s disconnected", conn.RemoteAddr())
			}
			return
		}
		in.frames.Set(frame)
	}
}
