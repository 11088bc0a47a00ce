package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing ids, safe for concurrent use.
type Sequencer struct {
	last atomic.Uint64
}

func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// AdvanceTo moves the sequence forward so the next id is greater than floor.
// It never moves the sequence backwards.
func (s *Sequencer) AdvanceTo(floor uint64) {
	for {
		current := s.last.Load()
		if current >= floor {
			return
		}
		if s.last.CompareAndSwap(current, floor) {
			return
		}
	}
}
