package supervisor

import (
	"time"

	"github.com/kandev/shellmcp/internal/tracing"
)

func (s *Supervisor) sweepInterval() time.Duration {
	period := s.retentionSeconds
	if period <= 0 || period > 60 {
		period = 60
	}
	return time.Duration(period) * time.Second
}

// sweepLoop periodically removes terminal records whose end_time is older
// than retentionSeconds. Running records are never swept.
func (s *Supervisor) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Supervisor) sweepOnce() {
	cutoff := time.Now().Add(-time.Duration(s.retentionSeconds) * time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()
	for pid, rec := range s.records {
		rec.mu.Lock()
		terminal := rec.status.terminal()
		end := rec.endTime
		rec.mu.Unlock()
		if terminal && end.Before(cutoff) {
			tracing.AnnotateSwept(rec.span)
			delete(s.records, pid)
		}
	}
}
