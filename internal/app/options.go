package service

import (
	"github.com/okian/roboscout/internal/domain/scoring"
	"github.com/okian/roboscout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets how many teams are aggregated at once.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRoundPolicy sets the qualification round policy.
func WithRoundPolicy(p scoring.RoundPolicy) Option {
	return func(s *Service) {
		s.roundPolicy = p
	}
}

// WithDivisionFallback enables or disables per-division match listing.
func WithDivisionFallback(enabled bool) Option {
	return func(s *Service) {
		s.divisionFallback = enabled
	}
}

// WithRankings enables per-event ranking retrieval. When fallback is set a
// ranking's high score stands in for events without qualification matches
// in best-event tracking; it implies fetching.
func WithRankings(fetch, fallback bool) Option {
	return func(s *Service) {
		s.fetchRankings = fetch || fallback
		s.rankingsFallback = fallback
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}
