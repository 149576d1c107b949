package video

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	customlog "github.com/leo-teleop/bridge/pkg/log"
	"github.com/leo-teleop/bridge/pkg/state"
)

func encodeFrame(payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}

func testLogger(t *testing.T) customlog.Logger {
	t.Helper()
	logger, err := customlog.NewLogrusLogger("error", "")
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}
	return logger
}

func TestReadFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{0xff, 0xd8, 0xff, 0xe0},
		{},
		bytes.Repeat([]byte{0xab}, 65536),
	}

	for _, p := range payloads {
		got, err := ReadFrame(bytes.NewReader(encodeFrame(p)))
		if err != nil {
			t.Fatalf("ReadFrame failed for %d-byte payload: %v", len(p), err)
		}
		if !bytes.Equal(got, p) {
			t.Errorf("Round trip mismatch for %d-byte payload", len(p))
		}
	}
}

func TestReadFrameShortRead(t *testing.T) {
	full := encodeFrame([]byte{1, 2, 3, 4, 5})

	// Truncated header
	if _, err := ReadFrame(bytes.NewReader(full[:2])); err == nil {
		t.Error("Expected error for truncated header")
	}

	// Truncated payload
	if _, err := ReadFrame(bytes.NewReader(full[:7])); err == nil {
		t.Error("Expected error for truncated payload")
	}
}

func TestReadFrameOversizedLength(t *testing.T) {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], maxFrameSize+1)

	if _, err := ReadFrame(bytes.NewReader(header[:])); err == nil {
		t.Error("Expected error for oversized length prefix")
	}
}

func startIngestor(t *testing.T) (*Ingestor, *state.FrameStore, context.CancelFunc) {
	t.Helper()
	frames := state.NewFrameStore()
	in := NewIngestor(frames, testLogger(t))
	if err := in.Listen(0); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go in.Run(ctx)
	return in, frames, cancel
}

func waitForFrame(t *testing.T, frames *state.FrameStore, want []byte) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := frames.Latest(); ok && bytes.Equal(got, want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	got, _ := frames.Latest()
	t.Fatalf("Timed out waiting for frame %v, have %v", want, got)
}

func TestIngestorLatestFrameWins(t *testing.T) {
	in, frames, cancel := startIngestor(t)
	defer cancel()

	conn, err := net.Dial("tcp", in.Addr().String())
	if err != nil {
		t.Fatalf("Failed to connect producer: %v", err)
	}
	defer conn.Close()

	f1 := []byte{0x01, 0x01, 0x01}
	f2 := []byte{0x02, 0x02}
	if _, err := conn.Write(encodeFrame(f1)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := conn.Write(encodeFrame(f2)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	waitForFrame(t, frames, f2)
}

func TestIngestorSurvivesMidFrameDisconnect(t *testing.T) {
	in, frames, cancel := startIngestor(t)
	defer cancel()

	conn, err := net.Dial("tcp", in.Addr().String())
	if err != nil {
		t.Fatalf("Failed to connect producer: %v", err)
	}
	if _, err := conn.Write(encodeFrame([]byte{0xaa, 0xbb})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	waitForFrame(t, frames, []byte{0xaa, 0xbb})

	// Partial frame, then hang up mid-payload
	partial := encodeFrame(bytes.Repeat([]byte{0xcc}, 100))
	conn.Write(partial[:20])
	conn.Close()

	// The last complete frame stays in place
	time.Sleep(50 * time.Millisecond)
	got, ok := frames.Latest()
	if !ok || !bytes.Equal(got, []byte{0xaa, 0xbb}) {
		t.Errorf("Expected last complete frame to remain, got %v", got)
	}

	// The listener keeps accepting after the failure
	conn2, err := net.Dial("tcp", in.Addr().String())
	if err != nil {
		t.Fatalf("Failed to reconnect producer: %v", err)
	}
	defer conn2.Close()
	if _, err := conn2.Write(encodeFrame([]byte{0xdd})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	waitForFrame(t, frames, []byte{0xdd})
}

func TestIngestorRejectsSecondProducer(t *testing.T) {
	in, frames, cancel := startIngestor(t)
	defer cancel()

	first, err := net.Dial("tcp", in.Addr().String())
	if err != nil {
		t.Fatalf("Failed to connect first producer: %v", err)
	}
	defer first.Close()
	if _, err := first.Write(encodeFrame([]byte{0x11})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	waitForFrame(t, frames, []byte{0x11})

	second, err := net.Dial("tcp", in.Addr().String())
	if err != nil {
		t.Fatalf("Failed to connect second producer: %v", err)
	}
	defer second.Close()

	// The second connection is closed by the ingestor: the next read
	// reports EOF once the close lands.
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := second.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("Expected EOF on rejected producer, got %v", err)
	}

	// The first producer is unaffected
	if _, err := first.Write(encodeFrame([]byte{0x22})); err != nil {
		t.Fatalf("First producer write failed after rejection: %v", err)
	}
	waitForFrame(t, frames, []byte{0x22})
}
