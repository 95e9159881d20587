package websocket

import "sync"

// Sequencer tracks the latest filter request on a connection so results of
// superseded requests can be dropped
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
	issued bool
}

// Next records seq as the latest request when it is newer than the current
// one. A zero seq asks the sequencer to assign the next number. It returns
// the effective seq and whether it became the latest.
func (s *Sequencer) Next(seq uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq == 0 {
		if s.issued {
			seq = s.latest + 1
		}
	} else if s.issued && seq <= s.latest {
		return seq, false
	}
	s.latest = seq
	s.issued = true
	return seq, true
}

// IsCurrent reports whether seq is still the latest request
func (s *Sequencer) IsCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued && s.latest == seq
}
