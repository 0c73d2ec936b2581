package supervisor

import (
	"fmt"
	"sort"
	"time"

	"github.com/kandev/shellmcp/internal/textio"
)

// ListFilter narrows the List result set. AND semantics across Labels: every
// requested label must be present on a record for it to match.
type ListFilter struct {
	Labels []string
	Status Status // zero value means no status filter
}

// List returns immutable snapshots ordered by start time ascending.
func (s *Supervisor) List(filter ListFilter) []Snapshot {
	want := make(map[string]struct{}, len(filter.Labels))
	for _, l := range filter.Labels {
		want[l] = struct{}{}
	}

	s.mu.Lock()
	matched := make([]*ProcessRecord, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Status != "" && rec.getStatus() != filter.Status {
			continue
		}
		if !rec.hasLabels(want) {
			continue
		}
		matched = append(matched, rec)
	}
	s.mu.Unlock()

	snapshots := make([]Snapshot, len(matched))
	for i, rec := range matched {
		snapshots[i] = rec.snapshot()
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].StartTime.Before(snapshots[j].StartTime)
	})
	return snapshots
}

// Stop requests termination of pid. force=false attempts a graceful signal
// with escalation after the grace window; force=true kills immediately.
func (s *Supervisor) Stop(pid int64, force bool) error {
	s.mu.Lock()
	rec, ok := s.records[pid]
	s.mu.Unlock()
	if !ok {
		return &validationLikeError{"Process not found"}
	}
	return s.stopRecord(rec, force)
}

// Detail returns an immutable snapshot of the record's status fields; log
// content is not included.
func (s *Supervisor) Detail(pid int64) (Snapshot, error) {
	s.mu.Lock()
	rec, ok := s.records[pid]
	s.mu.Unlock()
	if !ok {
		return Snapshot{}, &validationLikeError{"Process not found"}
	}
	return rec.snapshot(), nil
}

// CleanResult classifies the outcome of a clean() request for one pid.
type CleanResult struct {
	PID    int64
	Result string // "cleaned", "still_running", "not_found"
}

// Clean removes every terminal record named in pids from the registry.
// Running processes are never removed.
func (s *Supervisor) Clean(pids []int64) []CleanResult {
	results := make([]CleanResult, 0, len(pids))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pid := range pids {
		rec, ok := s.records[pid]
		if !ok {
			results = append(results, CleanResult{PID: pid, Result: "not_found"})
			continue
		}
		if rec.getStatus() == StatusRunning {
			results = append(results, CleanResult{PID: pid, Result: "still_running"})
			continue
		}
		delete(s.records, pid)
		results = append(results, CleanResult{PID: pid, Result: "cleaned"})
	}
	return results
}

// LogsFilter is the shell_bg_logs argument record.
type LogsFilter struct {
	Tail             int
	Since            time.Time
	Until            time.Time
	WithStdout       bool
	WithStderr       bool
	AddTimePrefix    bool
	TimePrefixFormat string
	FollowSeconds    int
	LimitLines       int
}

// LogsResult is the filtered, rendered line set for one stream.
type LogsResult struct {
	Header string
	Stdout []string
	Stderr []string
}

// Logs optionally waits briefly for more output on a still-running process,
// then applies time/tail filtering and line clamping.
func (s *Supervisor) Logs(pid int64, filter LogsFilter) (LogsResult, error) {
	s.mu.Lock()
	rec, ok := s.records[pid]
	s.mu.Unlock()
	if !ok {
		return LogsResult{}, &validationLikeError{"Process not found"}
	}

	if filter.FollowSeconds > 0 && rec.getStatus() == StatusRunning {
		waitForGrowth(rec, filter)
	}

	res := LogsResult{Header: detailHeader(rec)}
	if filter.WithStdout {
		res.Stdout = filterAndRender(rec.StdoutLog.Snapshot(), filter)
	}
	if filter.WithStderr {
		res.Stderr = filterAndRender(rec.StderrLog.Snapshot(), filter)
	}
	return res, nil
}

func waitForGrowth(rec *ProcessRecord, filter LogsFilter) {
	baseOut := rec.StdoutLog.Len()
	baseErr := rec.StderrLog.Len()
	deadline := time.After(time.Duration(filter.FollowSeconds) * time.Second)
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if rec.StdoutLog.Len() != baseOut || rec.StderrLog.Len() != baseErr {
				return
			}
		}
	}
}

func filterAndRender(lines []LogLine, filter LogsFilter) []string {
	filtered := make([]LogLine, 0, len(lines))
	for _, l := range lines {
		if !filter.Since.IsZero() && l.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && l.Timestamp.After(filter.Until) {
			continue
		}
		filtered = append(filtered, l)
	}
	if filter.Tail > 0 && len(filtered) > filter.Tail {
		filtered = filtered[len(filtered)-filter.Tail:]
	}

	text := make([]string, len(filtered))
	for i, l := range filtered {
		if filter.AddTimePrefix {
			text[i] = textio.PrefixLine(l.Timestamp, filter.TimePrefixFormat, l.Text)
		} else {
			text[i] = l.Text
		}
	}
	return textio.ClampLines(text, filter.LimitLines)
}

func detailHeader(rec *ProcessRecord) string {
	snap := rec.snapshot()
	dur := rec.duration(time.Now())
	status := snap.Status
	note := "running"
	if status.terminal() {
		note = "terminal"
	}
	return fmt.Sprintf("pid=%d status=%s command=%q description=%q labels=%v dir=%s duration=%s exit_code=%d (%s)",
		snap.PID, snap.Status, snap.Command, snap.Description, snap.Labels, snap.Directory, dur, snap.ExitCode, note)
}
