// Package service aggregates RobotEvents results into per-team season
// statistics.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/roboscout/internal/adapters/mq/queue"
	"github.com/okian/roboscout/internal/adapters/mq/worker"
	"github.com/okian/roboscout/internal/domain/dedupe"
	"github.com/okian/roboscout/internal/domain/model"
	"github.com/okian/roboscout/internal/domain/resolver"
	"github.com/okian/roboscout/internal/domain/scoring"
	"github.com/okian/roboscout/pkg/logger"
	"github.com/okian/roboscout/pkg/metrics"
)

// Source is the remote data the aggregator reads.
type Source interface {
	resolver.MatchSource
	FindTeam(ctx context.Context, code string) (model.TeamIdentity, error)
	TeamEvents(ctx context.Context, teamID int64, season int) ([]model.EventRef, model.FetchOutcome)
	EventSkills(ctx context.Context, eventID, teamID int64) ([]model.SkillsRecord, model.FetchOutcome)
	EventRankings(ctx context.Context, eventID, teamID int64) ([]model.RankingRecord, model.FetchOutcome)
}

// Service is the team aggregator.
type Service struct {
	source     Source
	resolver   *resolver.Resolver
	classifier *scoring.Classifier

	// Configuration
	workerCount      int
	roundPolicy      scoring.RoundPolicy
	divisionFallback bool
	fetchRankings    bool
	rankingsFallback bool
	runID            string

	// Progress
	mu       sync.RWMutex
	progress progress

	// Logging
	logger logger.Logger
}

type progress struct {
	running       bool
	startedAt     time.Time
	finishedAt    time.Time
	teamsTotal    int
	teamsDone     int
	teamsNotFound int
	events        int
}

// New constructs a Service reading from source.
func New(source Source, opts ...Option) *Service {
	s := &Service{
		source:           source,
		workerCount:      1,
		roundPolicy:      scoring.PolicySingle,
		divisionFallback: true,
		runID:            uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	s.resolver = resolver.New(source,
		resolver.WithDivisionFallback(s.divisionFallback),
		resolver.WithLogger(s.logger),
	)
	s.classifier = scoring.NewClassifier(scoring.WithRoundPolicy(s.roundPolicy))
	return s
}

// RunID returns the identifier attached to every log record of the service.
func (s *Service) RunID() string { return s.runID }

// Aggregate builds the season aggregate of one team. It returns
// ErrTeamNotFound when the code does not resolve, and the context error when
// ctx ends mid-run.
func (s *Service) Aggregate(ctx context.Context, code string, season int) (*model.TeamAggregate, error) {
	metrics.TeamStarted()
	defer metrics.TeamFinished()

	team, err := s.source.FindTeam(ctx, code)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.RecordTeamNotFound()
		s.logger.Warn(ctx, "team not found", logger.String("team", code), logger.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, code)
	}
	log := s.logger.With(logger.String("team", team.Code), logger.Int64("team_id", team.ID))

	events, o := s.source.TeamEvents(ctx, team.ID, season)
	if o.Reason.Degraded() {
		log.Warn(ctx, "event listing incomplete", logger.String("reason", string(o.Reason)), logger.Int("events", len(events)))
	}
	log.Info(ctx, "processing team", logger.Int("events", len(events)), logger.Int("season", season))

	agg := model.NewTeamAggregate(team)
	var best bestEvent
	seen := dedupe.NewInMemoryDeduper()
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Listings can repeat an event when pages shift mid-walk.
		if seen.SeenAndRecord(ctx, strconv.FormatInt(ev.ID, 10)) {
			log.Debug(ctx, "duplicate event skipped", logger.Int64("event_id", ev.ID))
			continue
		}
		summary := s.processEvent(ctx, log, agg, ev)
		if score, ok := s.candidate(summary); ok {
			best.offer(ev, score)
		}
		s.eventDone()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if best.set {
		agg.BestEventName = best.event.Name
		agg.BestEventScore = best.score
	}
	agg.Finalize()

	metrics.RecordTeamProcessed()
	log.Info(ctx, "team aggregated",
		logger.String("qual_avg", fmt.Sprintf("%.2f", agg.QualAverage)),
		logger.Int("best_qual", agg.BestQual),
		logger.String("elim_avg", fmt.Sprintf("%.2f", agg.ElimAverage)),
		logger.String("skill_avg", fmt.Sprintf("%.2f", agg.SkillAverage)),
		logger.String("best_event", agg.BestEventName),
		logger.Int64("events", seen.Size()),
	)
	return agg, nil
}

func (s *Service) processEvent(ctx context.Context, log logger.Logger, agg *model.TeamAggregate, ev model.EventRef) model.EventSummary {
	team := agg.Team
	res := s.resolver.Resolve(ctx, ev, team)
	qual, elim, skippedMatches := s.classifier.Matches(res.Matches, team.ID)
	agg.QualScores = append(agg.QualScores, qual...)
	agg.ElimScores = append(agg.ElimScores, elim...)
	metrics.RecordEventProcessed(string(res.Strategy))
	metrics.RecordSkipped("match", skippedMatches)

	records, _ := s.source.EventSkills(ctx, ev.ID, team.ID)
	driver, programming, skippedSkills := s.classifier.Skills(records)
	agg.DriverScores = append(agg.DriverScores, driver...)
	agg.ProgrammingScores = append(agg.ProgrammingScores, programming...)
	combined, hasSkill := scoring.Combined(driver, programming)
	if hasSkill {
		agg.CombinedSkills = append(agg.CombinedSkills, combined)
	}
	metrics.RecordSkipped("skills", skippedSkills)

	summary := model.EventSummary{
		Event:          ev,
		Strategy:       res.Strategy,
		Divisions:      res.Divisions,
		QualCount:      len(qual),
		ElimCount:      len(elim),
		BestQual:       model.Best(qual),
		CombinedSkill:  combined,
		HasSkill:       hasSkill,
		SkippedMatches: skippedMatches,
		SkippedSkills:  skippedSkills,
	}
	if s.fetchRankings {
		summary.Ranking = s.ranking(ctx, ev.ID, team.ID)
	}
	agg.Events = append(agg.Events, summary)

	log.Debug(ctx, "event processed",
		logger.Int64("event_id", ev.ID),
		logger.String("event", ev.Name),
		logger.String("strategy", string(res.Strategy)),
		logger.Int("qual", len(qual)),
		logger.Int("elim", len(elim)),
		logger.Int("combined_skill", combined),
	)
	return summary
}

func (s *Service) ranking(ctx context.Context, eventID, teamID int64) *model.RankingRecord {
	rankings, _ := s.source.EventRankings(ctx, eventID, teamID)
	for i := range rankings {
		if rankings[i].TeamID == teamID {
			return &rankings[i]
		}
	}
	return nil
}

// candidate is the score an event offers to best-event tracking.
func (s *Service) candidate(summary model.EventSummary) (int, bool) {
	if summary.QualCount > 0 {
		return summary.BestQual, true
	}
	if s.rankingsFallback && summary.Ranking != nil {
		return summary.Ranking.HighScore, true
	}
	return 0, false
}

// bestEvent tracks the event with the highest qualification score. Equal
// scores go to the earlier event, then the lower id, so the winner does not
// depend on processing order.
type bestEvent struct {
	set   bool
	event model.EventRef
	score int
}

func (b *bestEvent) offer(ev model.EventRef, score int) {
	switch {
	case score <= 0:
		return
	case !b.set, score > b.score:
	case score == b.score && earlier(ev, b.event):
	default:
		return
	}
	b.set, b.event, b.score = true, ev, score
}

func earlier(a, b model.EventRef) bool {
	if !a.Start.Equal(b.Start) {
		switch {
		case a.Start.IsZero():
			return false
		case b.Start.IsZero():
			return true
		default:
			return a.Start.Before(b.Start)
		}
	}
	return a.ID < b.ID
}

// Run aggregates every code in order, skipping codes that do not resolve.
// Duplicate codes are processed once. With more than one worker, teams are
// aggregated concurrently and results keep input order.
func (s *Service) Run(ctx context.Context, codes []string, season int) []*model.TeamAggregate {
	codes = NormalizeCodes(codes)
	s.begin(len(codes))
	defer s.end()

	s.logger.Info(ctx, "run started",
		logger.Int("teams", len(codes)),
		logger.Int("season", season),
		logger.Int("workers", s.workerCount),
		logger.String("round_policy", string(s.classifier.Policy())),
	)

	results := make([]*model.TeamAggregate, len(codes))
	attempted := 0
	if s.workerCount <= 1 || len(codes) <= 1 {
		for i, code := range codes {
			if ctx.Err() != nil {
				break
			}
			results[i] = s.aggregateOne(ctx, code, season)
			attempted++
		}
	} else {
		attempted = s.runPool(ctx, codes, season, results)
	}

	out := make([]*model.TeamAggregate, 0, len(results))
	for _, agg := range results {
		if agg != nil {
			out = append(out, agg)
		}
	}
	s.logger.Info(ctx, "run finished",
		logger.Int("aggregated", len(out)),
		logger.Int("attempted", attempted),
		logger.Int("requested", len(codes)),
	)
	return out
}

// runPool queues every code and lets a worker pool drain it; each slot of
// results is written by exactly one worker. It returns how many jobs ran.
func (s *Service) runPool(ctx context.Context, codes []string, season int, results []*model.TeamAggregate) int {
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(codes)))
	for i, code := range codes {
		if err := q.Enqueue(ctx, queue.Job{Index: i, Code: code}); err != nil {
			s.logger.Warn(ctx, "team not queued", logger.String("team", code), logger.Error(err))
		}
	}
	_ = q.Close()
	queued := q.Len()

	workers := s.workerCount
	if workers > len(codes) {
		workers = len(codes)
	}
	pool := worker.NewPool(workers, q, worker.HandlerFunc(func(ctx context.Context, job queue.Job) {
		results[job.Index] = s.aggregateOne(ctx, job.Code, season)
	}), worker.WithLogger(s.logger))
	if err := pool.Start(ctx); err != nil {
		s.logger.Error(ctx, "worker pool failed to start", logger.Error(err))
		return 0
	}
	s.logger.Debug(ctx, "worker pool started", logger.Int("workers", pool.Size()), logger.Int("queued", queued))
	return pool.Wait()
}

func (s *Service) aggregateOne(ctx context.Context, code string, season int) *model.TeamAggregate {
	agg, err := s.Aggregate(ctx, code, season)
	s.teamDone(err)
	if err != nil {
		return nil
	}
	return agg
}

// NormalizeCodes trims and upper-cases team codes, dropping blanks and
// repeats while keeping first-seen order.
func NormalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
