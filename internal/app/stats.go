package service

import (
	"errors"
	"time"
)

func (s *Service) begin(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = progress{running: true, startedAt: time.Now(), teamsTotal: total}
}

func (s *Service) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.running = false
	s.progress.finishedAt = time.Now()
}

func (s *Service) teamDone(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.teamsDone++
	if errors.Is(err, ErrTeamNotFound) {
		s.progress.teamsNotFound++
	}
}

func (s *Service) eventDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.events++
}

// GetStats returns run progress for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.progress
	stats := map[string]interface{}{
		"runId":            s.runID,
		"running":          p.running,
		"workerCount":      s.workerCount,
		"roundPolicy":      string(s.classifier.Policy()),
		"teamsTotal":       p.teamsTotal,
		"teamsDone":        p.teamsDone,
		"teamsNotFound":    p.teamsNotFound,
		"eventsProcessed":  p.events,
		"divisionFallback": s.divisionFallback,
	}
	if !p.startedAt.IsZero() {
		end := time.Now()
		if !p.running && !p.finishedAt.IsZero() {
			end = p.finishedAt
		}
		stats["startedAt"] = p.startedAt.UTC().Format(time.RFC3339)
		stats["elapsedSeconds"] = end.Sub(p.startedAt).Seconds()
	}
	return stats
}
