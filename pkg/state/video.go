package state

import "sync"

// FrameStore holds the most recent complete video frame. Frames are
// overwritten, never queued: a slow consumer observes only the latest
// frame. The stored slice is treated as immutable by all readers.
type FrameStore struct {
	mu    sync.RWMutex
	frame []byte
}

// NewFrameStore creates an empty frame slot (no frame present).
func NewFrameStore() *FrameStore {
	return &FrameStore{}
}

// Set installs a complete frame, replacing any previous one. The caller
// must not modify data after the call.
func (s *FrameStore) Set(data []byte) {
	s.mu.Lock()
	s.frame = data
	s.mu.Unlock()
}

// Latest returns the current frame and whether one is present. The
// returned slice must not be modified.
func (s *FrameStore) Latest() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.frame != nil
}
