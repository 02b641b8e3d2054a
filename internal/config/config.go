// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New() builds a Config holding every default.
// - Load(ctx) layers defaults, an optional file and ROBOSCOUT_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Round policies accepted by RoundPolicy.
const (
	RoundPolicySingle = "single"
	RoundPolicyDouble = "double"
)

// Sort keys accepted by SortKey.
const (
	SortSkillAverage  = "skill_avg"
	SortQualAverage   = "qual_avg"
	SortBestQual      = "best_qual"
	SortQualThenSkill = "qual_then_skill"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the versioned API root, e.g. https://www.robotevents.com/api/v2.
	BaseURL string `koanf:"base_url"`
	// APIToken is sent as a bearer token. It is never validated locally.
	APIToken string `koanf:"api_token"`
	// Season is the season identifier used to list a team's events.
	Season int `koanf:"season"`
	// PerPage is requested on every paginated call.
	PerPage int `koanf:"per_page"`
	// RequestTimeoutMS bounds a single HTTP round trip.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
	// MaxAttempts is the retry ceiling for one page request.
	MaxAttempts int `koanf:"max_attempts"`
	// RetryAfterDefaultS is the wait applied to a 429 without Retry-After.
	RetryAfterDefaultS int `koanf:"retry_after_default_s"`
	// RetryAfterMaxS caps any 429 wait, including server-supplied ones.
	RetryAfterMaxS int `koanf:"retry_after_max_s"`
	// BackoffInitialMS and BackoffMaxMS shape the transient-failure backoff.
	BackoffInitialMS int `koanf:"backoff_initial_ms"`
	BackoffMaxMS     int `koanf:"backoff_max_ms"`
	// RequestsPerSecond paces outgoing requests; 0 disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// RoundPolicy selects which round numbers count as qualification.
	RoundPolicy string `koanf:"round_policy"`
	// DivisionFallback enables per-division match listing.
	DivisionFallback bool `koanf:"division_fallback"`
	// FetchRankings retrieves per-event rankings for the event summaries.
	FetchRankings bool `koanf:"fetch_rankings"`
	// RankingsFallback lets a ranking high score seed best-event tracking
	// for events without qualification matches.
	RankingsFallback bool `koanf:"rankings_fallback"`

	// SortKey orders the report rows.
	SortKey string `koanf:"sort_key"`
	// OutputDir receives the report files.
	OutputDir string `koanf:"output_dir"`
	// OutputPrefix names the report files: <prefix>_<timestamp>.txt/.csv.
	OutputPrefix string `koanf:"output_prefix"`

	// WorkerCount sets how many teams are processed at once.
	WorkerCount int `koanf:"worker_count"`
	// MetricsAddr exposes /metrics and /stats while a run is in progress.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		BaseURL:            "https://www.robotevents.com/api/v2",
		PerPage:            250,
		RequestTimeoutMS:   30_000,
		MaxAttempts:        3,
		RetryAfterDefaultS: 5,
		RetryAfterMaxS:     300,
		BackoffInitialMS:   2_000,
		BackoffMaxMS:       30_000,
		RoundPolicy:        RoundPolicySingle,
		DivisionFallback:   true,
		FetchRankings:      false,
		RankingsFallback:   false,
		SortKey:            SortSkillAverage,
		OutputDir:          ".",
		OutputPrefix:       "robotics_teams",
		WorkerCount:        1,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// RetryAfterDefault returns RetryAfterDefaultS as a duration.
func (c *Config) RetryAfterDefault() time.Duration {
	return time.Duration(c.RetryAfterDefaultS) * time.Second
}

// RetryAfterMax returns RetryAfterMaxS as a duration.
func (c *Config) RetryAfterMax() time.Duration {
	return time.Duration(c.RetryAfterMaxS) * time.Second
}

// BackoffInitial returns BackoffInitialMS as a duration.
func (c *Config) BackoffInitial() time.Duration {
	return time.Duration(c.BackoffInitialMS) * time.Millisecond
}

// BackoffMax returns BackoffMaxMS as a duration.
func (c *Config) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxMS) * time.Millisecond
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.PerPage <= 0:
		return fmt.Errorf("%w: per_page must be positive", ErrInvalidConfig)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("%w: max_attempts must be positive", ErrInvalidConfig)
	case c.RetryAfterDefaultS < 0:
		return fmt.Errorf("%w: retry_after_default_s must not be negative", ErrInvalidConfig)
	case c.RetryAfterMaxS <= 0:
		return fmt.Errorf("%w: retry_after_max_s must be positive", ErrInvalidConfig)
	case c.RequestsPerSecond < 0:
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	switch c.RoundPolicy {
	case RoundPolicySingle, RoundPolicyDouble:
	default:
		return fmt.Errorf("%w: unknown round_policy %q", ErrInvalidConfig, c.RoundPolicy)
	}
	switch c.SortKey {
	case SortSkillAverage, SortQualAverage, SortBestQual, SortQualThenSkill:
	default:
		return fmt.Errorf("%w: unknown sort_key %q", ErrInvalidConfig, c.SortKey)
	}
	return nil
}
