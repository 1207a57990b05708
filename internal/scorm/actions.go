package scorm

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// ResumeResult reports which strategy, if any, was asked to restore the
// saved position. Applied=false means no strategy fit the package; the
// learner can still fall back to Quick Jump or Manual Resume.
type ResumeResult struct {
	Strategy string   `json:"strategy,omitempty"`
	Applied  bool     `json:"applied"`
	Command  *Command `json:"command,omitempty"`
}

// ManualResumeInfo is what a learner needs to find their place by hand.
type ManualResumeInfo struct {
	Location         string `json:"location"`
	Slide            int    `json:"slide,omitempty"`
	UnitsVisited     int    `json:"unitsVisited"`
	EstimatedPercent int    `json:"estimatedPercent"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
}

var trailingNumberRe = regexp.MustCompile(`(\d+)$`)

// Resume tries each configured strategy in order and queues the first
// command that applies. When none applies the session stays Resuming.
func (s *Session) Resume() (ResumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return ResumeResult{}, ErrSessionCompleted
	}
	if !s.resumeFrom.HasResumePoint() {
		return ResumeResult{}, ErrNothingToResume
	}

	now := s.clock.Now()
	for _, r := range s.resumers {
		cmd, ok := r.Resume(s.resumeFrom, now)
		if !ok {
			continue
		}
		s.leaveResumingLocked()
		s.commands = append(s.commands, cmd)
		s.log.Debug("resume requested", "strategy", r.Name())
		return ResumeResult{Strategy: r.Name(), Applied: true, Command: &cmd}, nil
	}
	return ResumeResult{}, nil
}

// QuickJump queues a navigation intent to location, defaulting to the saved
// position. The package may ignore it.
func (s *Session) QuickJump(location string) (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return Command{}, ErrSessionCompleted
	}
	if location == "" && s.resumeFrom != nil {
		location = s.resumeFrom.Location
	}
	if location == "" {
		location = s.data.Location
	}
	if location == "" {
		return Command{}, ErrNothingToResume
	}

	s.leaveResumingLocked()
	cmd := Command{Kind: CommandNavigate, Location: location, At: s.clock.Now()}
	s.commands = append(s.commands, cmd)
	return cmd, nil
}

// ManualResume describes the saved position so the learner can navigate
// there themselves.
func (s *Session) ManualResume() ManualResumeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	location, suspend := s.data.Location, s.data.SuspendData
	if s.resumeFrom != nil {
		location, suspend = s.resumeFrom.Location, s.resumeFrom.SuspendData
	}
	total := s.acc.Total()

	info := ManualResumeInfo{
		Location:         location,
		UnitsVisited:     visitedUnitCount(suspend),
		EstimatedPercent: EstimateProgress(suspend, location),
		TimeSpent:        FormatClock(total),
		TimeSpentSeconds: int64(total.Seconds()),
	}
	if !hexLikeRe.MatchString(location) {
		if m := trailingNumberRe.FindStringSubmatch(location); m != nil {
			info.Slide, _ = strconv.Atoi(m[1])
		}
	}
	s.leaveResumingLocked()
	return info
}

// StartOver clears the session's completed flag and pending commits and asks
// the page to restart the package. The cached position stays, so the
// persisted record keeps its resume point until the package reports new state.
func (s *Session) StartOver() Command {
	s.mu.Lock()
	s.completed = false
	s.resumeFrom = nil
	for _, key := range []string{keyLocation, keyLocation12, keySuspendData, keyLessonStatus12, keyCompletionStatus, keySuccessStatus} {
		delete(s.table, key)
	}
	s.savedRev = s.rev
	s.state = StateInProgress
	cmd := Command{Kind: CommandRestart, At: s.clock.Now()}
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()

	s.debounce.Stop()
	s.log.Info("scorm session started over")
	return cmd
}

func (s *Session) leaveResumingLocked() {
	if s.state == StateResuming || s.state == StateReady {
		s.state = StateInProgress
	}
}

func visitedUnitCount(suspend string) int {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(suspend), &parsed); err != nil {
		return 0
	}
	if h, ok := parsed["h"].(map[string]any); ok {
		return len(h)
	}
	return 0
}
