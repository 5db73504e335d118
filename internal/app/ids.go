package app

import (
	"time"

	"github.com/studiowebux/restdeck/internal/types"
)

// idSource hands out session-unique ids for added records.
// Ids start at the current time in milliseconds and never repeat
// within a session, even when the clock stalls or goes backwards.
type idSource struct {
	now  func() time.Time
	last int64
}

func (s *idSource) next(store []types.Record) int64 {
	taken := make(map[int64]struct{}, len(store))
	for _, r := range store {
		if id, ok := r.ID(); ok {
			taken[id] = struct{}{}
		}
	}

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	for {
		if _, dup := taken[id]; !dup {
			break
		}
		id++
	}
	s.last = id
	return id
}
