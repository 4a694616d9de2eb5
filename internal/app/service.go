// Package service wires the scoring evaluator to storage and the conflict
// advisory pipeline, and enforces the ownership rules the HTTP API relies on.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/mq/queue"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/mq/worker"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/repository"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/dedupe"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/scoring"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/metrics"
)

// ErrNotOwner is returned when a judge acts on another judge's score.
var ErrNotOwner = errors.New("score belongs to another judge")

// Store is everything the service needs from persistence.
type Store interface {
	scoring.Store
	scoring.RubricLookup
	worker.Sink
	SaveRubric(ctx context.Context, r model.Rubric) error
	Leaderboard(ctx context.Context, competitionID string, limit int) ([]model.LeaderboardEntry, error)
	ListAdvisories(ctx context.Context, competitionID string, limit int) ([]model.Advisory, error)
	Ping(ctx context.Context) error
}

// ScoreResult is a persisted score plus, when the save counted toward
// consensus, the consistency report computed right after it.
type ScoreResult struct {
	Score       model.Score              `json:"score"`
	Consistency *model.ConsistencyReport `json:"consistency,omitempty"`
}

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	store     Store
	evaluator *scoring.Evaluator
	validate  *validator.Validate

	deduper    dedupe.Deduper
	queue      queue.Queue
	workerPool *worker.Pool

	workerCount         int
	queueSize           int
	dedupeSize          int
	thresholdPct        float64
	maxLeaderboardLimit int
	now                 func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of advisory workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the advisory queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many advisory keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithThreshold sets the consistency threshold in percent.
func WithThreshold(pct float64) Option {
	return func(s *Service) {
		if pct >= 0 {
			s.thresholdPct = pct
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard and advisory page sizes.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLeaderboardLimit = limit
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
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

// New constructs a Service over store. Advisory processing begins with Start.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:               store,
		validate:            validator.New(),
		workerCount:         2,
		queueSize:           1024,
		dedupeSize:          10000,
		thresholdPct:        scoring.DefaultThresholdPct,
		maxLeaderboardLimit: 100,
		now:                 func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.evaluator = scoring.NewEvaluator(store, store,
		scoring.WithThreshold(s.thresholdPct),
		scoring.WithClock(s.now),
	)
	return s
}

// Start creates the advisory queue, deduper and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.queue = q
	s.workerPool = worker.NewPool(s.workerCount, q, s.store, worker.WithFailureHandler(s.advisoryFailed))
	// Workers outlive the caller's context; Stop drains them.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Float64("threshold_pct", s.thresholdPct),
	)
	return nil
}

// Stop drains pending advisories and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	err := s.workerPool.Shutdown(ctx)
	s.logger.Info(ctx, "scoring service stopped", logger.Int64("advisories_persisted", s.workerPool.Processed()))
	return err
}

// RecordScore saves a judge's work. Scores already validated or final are
// locked and rejected with a *scoring.StateError.
func (s *Service) RecordScore(ctx context.Context, in scoring.RecordInput) (ScoreResult, error) { //nolint:gocritic // hugeParam
	existing, err := s.evaluator.FindScore(ctx, model.ScoreKey{JudgeID: in.JudgeID, TeamID: in.TeamID, CompetitionID: in.CompetitionID})
	switch {
	case err == nil && existing.Status.Locked():
		return ScoreResult{}, &scoring.StateError{ScoreID: existing.ID, Status: existing.Status}
	case err != nil && !errors.Is(err, model.ErrScoreNotFound):
		return ScoreResult{}, err
	}

	sc, err := s.evaluator.RecordScore(ctx, in)
	if err != nil {
		return ScoreResult{}, err
	}

	res := ScoreResult{Score: sc}
	// A counted score entering consensus or changing its total re-checks the team.
	if sc.Status.Counted() && (!existing.Status.Counted() || existing.TotalScore != sc.TotalScore) {
		res.Consistency = s.afterSubmit(ctx, sc)
	}
	return res, nil
}

// SubmitScore finalises a judge's own score and evaluates consensus for the
// team. A conflicting result is published as an advisory and never fails the
// submission.
func (s *Service) SubmitScore(ctx context.Context, judgeID, scoreID string) (ScoreResult, error) {
	current, err := s.evaluator.GetScore(ctx, scoreID)
	if err != nil {
		return ScoreResult{}, err
	}
	if current.JudgeID != judgeID {
		return ScoreResult{}, fmt.Errorf("score %s: %w", scoreID, ErrNotOwner)
	}

	sc, err := s.evaluator.SubmitScore(ctx, scoreID)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{Score: sc, Consistency: s.afterSubmit(ctx, sc)}, nil
}

// afterSubmit runs the consistency check for the submitted score's team and
// publishes a conflict. Failures are logged; the submission already stands.
func (s *Service) afterSubmit(ctx context.Context, sc model.Score) *model.ConsistencyReport { //nolint:gocritic // hugeParam
	rep, err := s.evaluator.CheckConsistency(ctx, sc.TeamID, sc.CompetitionID, "")
	if err != nil {
		s.logger.Error(ctx, "consistency check after submit failed",
			logger.String("score_id", sc.ID),
			logger.Error(err),
		)
		return nil
	}
	if !rep.Consistent {
		s.publish(ctx, rep, sc.ID)
	}
	return &rep
}

func (s *Service) publish(ctx context.Context, rep model.ConsistencyReport, triggeredBy string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		s.logger.Warn(ctx, "advisory pipeline not running, conflict not recorded",
			logger.String("team_id", rep.TeamID),
			logger.Float64("spread_pct", rep.SpreadPct),
		)
		metrics.RecordAdvisoryDropped()
		return
	}

	a := model.NewAdvisory(rep, triggeredBy, s.now())
	a.ID = uuid.NewString()
	key := dedupe.AdvisoryKey(a)

	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordAdvisoryDuplicate()
		s.logger.Debug(ctx, "duplicate advisory suppressed", logger.String("key", key))
		return
	}
	if !s.queue.Enqueue(context.WithoutCancel(ctx), a) {
		s.deduper.Unrecord(ctx, key)
		metrics.RecordAdvisoryDropped()
		s.logger.Warn(ctx, "advisory queue full, conflict dropped",
			logger.String("team_id", a.TeamID),
			logger.String("competition_id", a.CompetitionID),
		)
	}
}

// advisoryFailed forgets an advisory the store rejected so the next
// conflicting save for the team publishes it again.
func (s *Service) advisoryFailed(ctx context.Context, a model.Advisory, err error) { //nolint:gocritic // hugeParam
	s.deduper.Unrecord(ctx, dedupe.AdvisoryKey(a))
	metrics.RecordAdvisoryDropped()
	s.logger.Warn(ctx, "advisory not persisted, will be republished",
		logger.String("team_id", a.TeamID),
		logger.String("competition_id", a.CompetitionID),
		logger.Error(err),
	)
}

// CheckConsistency reports judge agreement for a team, optionally excluding one judge.
func (s *Service) CheckConsistency(ctx context.Context, teamID, competitionID, excludeJudgeID string) (model.ConsistencyReport, error) {
	return s.evaluator.CheckConsistency(ctx, teamID, competitionID, excludeJudgeID)
}

// GetScore returns a score by id.
func (s *Service) GetScore(ctx context.Context, id string) (model.Score, error) {
	return s.evaluator.GetScore(ctx, id)
}

// ListScores returns every judge's score for a team in a competition.
func (s *Service) ListScores(ctx context.Context, teamID, competitionID string) ([]model.Score, error) {
	return s.evaluator.ListScores(ctx, teamID, competitionID)
}

// Leaderboard ranks teams in a competition. Limits above the configured
// maximum are capped.
func (s *Service) Leaderboard(ctx context.Context, competitionID string, limit int) ([]model.LeaderboardEntry, error) {
	entries, err := s.store.Leaderboard(ctx, competitionID, s.capLimit(limit))
	if err != nil && !errors.Is(err, repository.ErrInvalidLimit) {
		return nil, &scoring.StorageError{Op: "leaderboard", Err: err}
	}
	return entries, err
}

// Advisories returns the newest conflict advisories.
func (s *Service) Advisories(ctx context.Context, competitionID string, limit int) ([]model.Advisory, error) {
	out, err := s.store.ListAdvisories(ctx, competitionID, s.capLimit(limit))
	if err != nil && !errors.Is(err, repository.ErrInvalidLimit) {
		return nil, &scoring.StorageError{Op: "advisories", Err: err}
	}
	return out, err
}

func (s *Service) capLimit(limit int) int {
	if limit > s.maxLeaderboardLimit {
		return s.maxLeaderboardLimit
	}
	return limit
}

// SaveRubric validates and stores a rubric template.
func (s *Service) SaveRubric(ctx context.Context, r model.Rubric) error {
	if err := s.validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &scoring.ValidationError{Field: verrs[0].Namespace(), Reason: "failed " + verrs[0].Tag() + " check"}
		}
		return &scoring.ValidationError{Field: "rubric", Reason: err.Error()}
	}
	seen := make(map[string]struct{}, len(r.Criteria))
	for _, c := range r.Criteria {
		if _, dup := seen[c.ID]; dup {
			return &scoring.ValidationError{Field: "criteria", Reason: fmt.Sprintf("duplicate criterion id %q", c.ID)}
		}
		seen[c.ID] = struct{}{}
	}

	if err := s.store.SaveRubric(ctx, r); err != nil {
		return &scoring.StorageError{Op: "save_rubric", Err: err}
	}
	s.logger.Info(ctx, "rubric saved",
		logger.String("rubric_id", r.ID),
		logger.Int("criteria", len(r.Criteria)),
		logger.Float64("max_total", r.MaxTotal()),
	)
	return nil
}

// Rubric returns a rubric template.
func (s *Service) Rubric(ctx context.Context, id string) (model.Rubric, error) {
	r, err := s.store.Rubric(ctx, id)
	if err != nil && !errors.Is(err, model.ErrRubricNotFound) {
		return model.Rubric{}, &scoring.StorageError{Op: "rubric", Err: err}
	}
	return r, err
}

// Health checks the backing store.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"thresholdPct":   s.thresholdPct,
		"leaderboardMax": s.maxLeaderboardLimit,
	}

	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		stats["advisoriesPersisted"] = s.workerPool.Processed()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
