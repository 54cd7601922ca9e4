package monitor

import "time"

// session is the poll state for one Handle. A timer is "running" while its
// armed flag is set; stopping clears the flag so the pending tick is dropped
// when it fires.
type session struct {
	gen        uint64
	handle     Handle
	startedAt  time.Time
	lastUpdate time.Time
	failures   int
	polls      int

	pollArmed   bool
	safetyArmed bool
	inflight    bool
}

func (s *session) stop() {
	s.pollArmed = false
	s.safetyArmed = false
}

func (s *session) info() SessionInfo {
	return SessionInfo{
		Handle:              s.handle,
		StartedAt:           s.startedAt,
		LastUpdate:          s.lastUpdate,
		ConsecutiveFailures: s.failures,
		Polls:               s.polls,
		PollTimerActive:     s.pollArmed,
		SafetyTimerActive:   s.safetyArmed,
		FetchInFlight:       s.inflight,
	}
}

// SessionInfo is a read-only copy of the live poll session.
type SessionInfo struct {
	Handle              Handle
	StartedAt           time.Time
	LastUpdate          time.Time
	ConsecutiveFailures int
	Polls               int
	PollTimerActive     bool
	SafetyTimerActive   bool
	FetchInFlight       bool
}

// Elapsed returns how long the session has been running at now.
func (i SessionInfo) Elapsed(now time.Time) time.Duration {
	return now.Sub(i.StartedAt)
}
