package idle

import (
	"time"

	"github.com/jzahidzamacona/Fronty-sub001/internal/clock"
)

// timerSet owns every timer of one idle cycle. Callbacks receive the
// generation they were armed in; after cancelAll that generation is stale
// and the owner drops the callback even if the underlying timer already
// fired. Not safe for concurrent use; the Monitor serializes access.
type timerSet struct {
	clock  clock.Clock
	gen    uint64
	timers []clock.Timer
}

func (s *timerSet) arm(d time.Duration, fn func(gen uint64)) {
	gen := s.gen
	s.timers = append(s.timers, s.clock.AfterFunc(d, func() { fn(gen) }))
}

func (s *timerSet) cancelAll() {
	s.gen++
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = s.timers[:0]
}

func (s *timerSet) current(gen uint64) bool {
	return gen == s.gen
}
