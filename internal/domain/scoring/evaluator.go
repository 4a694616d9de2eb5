// Package scoring records judges' rubric scores and reports whether
// independent judges agree on a team's total.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/metrics"
)

// Store persists Score rows. Implementations enforce uniqueness of
// (judge, team, competition); lookups that miss return model.ErrScoreNotFound.
type Store interface {
	FindByKey(ctx context.Context, key model.ScoreKey) (model.Score, error)
	Get(ctx context.Context, id string) (model.Score, error)
	Insert(ctx context.Context, s model.Score) error
	Update(ctx context.Context, s model.Score) error
	// ListByTeam returns the team's scores in a competition. A nil statuses
	// slice returns every status.
	ListByTeam(ctx context.Context, teamID, competitionID string, statuses []model.Status) ([]model.Score, error)
}

// RubricLookup resolves rubric templates. Unknown ids return model.ErrRubricNotFound.
type RubricLookup interface {
	Rubric(ctx context.Context, id string) (model.Rubric, error)
}

// RecordInput is one save of a judge's work on a score.
type RecordInput struct {
	TeamID          string             `validate:"required,max=64"`
	CompetitionID   string             `validate:"required,max=64"`
	JudgeID         string             `validate:"required,max=64"`
	RubricID        string             `validate:"required,max=64"`
	Points          map[string]float64 `validate:"omitempty,dive,keys,required,endkeys"`
	Notes           string             `validate:"max=10000"`
	DurationMinutes *int               `validate:"omitempty,min=0"`
	// Status is the requested lifecycle state. Empty keeps the stored one.
	// Validation and finalisation belong to administrative reconciliation.
	Status      model.Status `validate:"omitempty,oneof=draft in_progress submitted"`
	Fingerprint model.Fingerprint
}

// Evaluator implements score recording, submission and consistency checks.
// It holds no per-call state; all state lives in the Store.
type Evaluator struct {
	store        Store
	rubrics      RubricLookup
	thresholdPct float64
	now          func() time.Time
	newID        func() string
	logger       logger.Logger
	tracer       trace.Tracer
	validate     *validator.Validate
}

// NewEvaluator creates an evaluator over the given store and rubric lookup.
func NewEvaluator(store Store, rubrics RubricLookup, opts ...Option) *Evaluator {
	e := &Evaluator{
		store:        store,
		rubrics:      rubrics,
		thresholdPct: DefaultThresholdPct,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		tracer:       otel.Tracer("scoring-evaluator"),
		validate:     validator.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("scoring")
	}
	return e
}

// ThresholdPct returns the configured conflict threshold.
func (e *Evaluator) ThresholdPct() float64 { return e.thresholdPct }

// RecordScore validates the awarded points against the rubric, computes the
// totals and upserts the score for (judge, team, competition). It is
// all-or-nothing: no write happens unless validation passes.
func (e *Evaluator) RecordScore(ctx context.Context, in RecordInput) (model.Score, error) {
	ctx, span := e.tracer.Start(ctx, "Evaluator.RecordScore", trace.WithAttributes(
		attribute.String("team.id", in.TeamID),
		attribute.String("competition.id", in.CompetitionID),
		attribute.String("judge.id", in.JudgeID),
		attribute.String("rubric.id", in.RubricID),
	))
	defer span.End()

	s, err := e.recordScore(ctx, in)
	if err != nil {
		return model.Score{}, e.fail(span, err)
	}

	metrics.RecordScoreRecorded(string(s.Status))
	span.SetAttributes(
		attribute.String("score.id", s.ID),
		attribute.String("score.status", string(s.Status)),
		attribute.Float64("score.total", s.TotalScore),
	)
	e.logger.Debug(ctx, "score recorded",
		logger.String("score_id", s.ID),
		logger.String("judge_id", s.JudgeID),
		logger.String("team_id", s.TeamID),
		logger.String("competition_id", s.CompetitionID),
		logger.String("status", string(s.Status)),
		logger.Float64("total", s.TotalScore),
	)
	return s, nil
}

func (e *Evaluator) recordScore(ctx context.Context, in RecordInput) (model.Score, error) {
	if err := e.validateInput(in); err != nil {
		return model.Score{}, err
	}

	rubric, err := e.rubrics.Rubric(ctx, in.RubricID)
	switch {
	case errors.Is(err, model.ErrRubricNotFound):
		return model.Score{}, &ValidationError{Field: "rubric_id", Reason: fmt.Sprintf("unknown rubric %q", in.RubricID)}
	case err != nil:
		return model.Score{}, &StorageError{Op: "rubric", Err: err}
	}

	totals, err := ComputeTotals(rubric, in.Points)
	if err != nil {
		return model.Score{}, err
	}

	key := model.ScoreKey{JudgeID: in.JudgeID, TeamID: in.TeamID, CompetitionID: in.CompetitionID}
	existing, err := e.store.FindByKey(ctx, key)
	switch {
	case errors.Is(err, model.ErrScoreNotFound):
		s := Merge(nil, in, totals, e.now())
		s.ID = e.newID()
		err := e.store.Insert(ctx, s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, model.ErrScoreExists) {
			return model.Score{}, &StorageError{Op: "insert", Err: err}
		}
		// A concurrent save created the row first; update it instead.
		if existing, err = e.store.FindByKey(ctx, key); err != nil {
			return model.Score{}, &StorageError{Op: "find", Err: err}
		}
	case err != nil:
		return model.Score{}, &StorageError{Op: "find", Err: err}
	}

	s := Merge(&existing, in, totals, e.now())
	if err := e.store.Update(ctx, s); err != nil {
		return model.Score{}, &StorageError{Op: "update", Err: err}
	}
	return s, nil
}

func (e *Evaluator) validateInput(in RecordInput) error {
	err := e.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Reason: "failed " + fe.Tag() + " check"}
	}
	return &ValidationError{Field: "input", Reason: err.Error()}
}

// CheckConsistency aggregates the submitted, validated and final totals for
// a team in a competition, optionally leaving one judge out. A conflicting
// result is a normal return value.
func (e *Evaluator) CheckConsistency(ctx context.Context, teamID, competitionID, excludeJudgeID string) (model.ConsistencyReport, error) {
	ctx, span := e.tracer.Start(ctx, "Evaluator.CheckConsistency", trace.WithAttributes(
		attribute.String("team.id", teamID),
		attribute.String("competition.id", competitionID),
		attribute.String("exclude.judge.id", excludeJudgeID),
	))
	defer span.End()

	if teamID == "" || competitionID == "" {
		return model.ConsistencyReport{}, e.fail(span, &ValidationError{Field: "team_id/competition_id", Reason: "are required"})
	}

	scores, err := e.store.ListByTeam(ctx, teamID, competitionID, model.CountedStatuses)
	if err != nil {
		return model.ConsistencyReport{}, e.fail(span, &StorageError{Op: "list", Err: err})
	}

	totals := make([]float64, 0, len(scores))
	for _, s := range scores {
		if excludeJudgeID != "" && s.JudgeID == excludeJudgeID {
			continue
		}
		if !s.Status.Counted() {
			continue
		}
		totals = append(totals, s.TotalScore)
	}

	rep := Evaluate(totals, e.thresholdPct)
	rep.TeamID = teamID
	rep.CompetitionID = competitionID

	metrics.RecordConsistencyCheck(rep.Consistent, rep.SpreadPct)
	span.SetAttributes(
		attribute.Int("judges", rep.JudgeCount),
		attribute.Float64("spread.pct", rep.SpreadPct),
		attribute.Bool("consistent", rep.Consistent),
	)
	e.logger.Debug(ctx, "consistency evaluated",
		logger.String("team_id", teamID),
		logger.String("competition_id", competitionID),
		logger.Int("judges", rep.JudgeCount),
		logger.Float64("spread_pct", rep.SpreadPct),
		logger.Bool("consistent", rep.Consistent),
	)
	return rep, nil
}

// SubmitScore moves a score to submitted and stamps the submission time.
// Validated and final scores are rejected with a StateError and left untouched.
func (e *Evaluator) SubmitScore(ctx context.Context, scoreID string) (model.Score, error) {
	ctx, span := e.tracer.Start(ctx, "Evaluator.SubmitScore", trace.WithAttributes(
		attribute.String("score.id", scoreID),
	))
	defer span.End()

	s, err := e.get(ctx, scoreID)
	if err != nil {
		return model.Score{}, e.fail(span, err)
	}
	if s.Status.Locked() {
		return model.Score{}, e.fail(span, &StateError{ScoreID: s.ID, Status: s.Status})
	}

	now := e.now()
	s.Status = model.StatusSubmitted
	s.SubmittedAt = &now
	s.UpdatedAt = now
	if err := e.store.Update(ctx, s); err != nil {
		return model.Score{}, e.fail(span, &StorageError{Op: "update", Err: err})
	}

	metrics.RecordScoreSubmitted()
	e.logger.Info(ctx, "score submitted",
		logger.String("score_id", s.ID),
		logger.String("judge_id", s.JudgeID),
		logger.String("team_id", s.TeamID),
		logger.String("competition_id", s.CompetitionID),
		logger.Float64("total", s.TotalScore),
	)
	return s, nil
}

// GetScore fetches a score by id.
func (e *Evaluator) GetScore(ctx context.Context, id string) (model.Score, error) {
	return e.get(ctx, id)
}

// FindScore fetches the score held under key, if any.
func (e *Evaluator) FindScore(ctx context.Context, key model.ScoreKey) (model.Score, error) {
	s, err := e.store.FindByKey(ctx, key)
	switch {
	case errors.Is(err, model.ErrScoreNotFound):
		return model.Score{}, fmt.Errorf("score for judge %s team %s: %w", key.JudgeID, key.TeamID, model.ErrScoreNotFound)
	case err != nil:
		return model.Score{}, &StorageError{Op: "find", Err: err}
	}
	return s, nil
}

// ListScores returns every score for a team in a competition, in any status.
func (e *Evaluator) ListScores(ctx context.Context, teamID, competitionID string) ([]model.Score, error) {
	scores, err := e.store.ListByTeam(ctx, teamID, competitionID, nil)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return scores, nil
}

func (e *Evaluator) get(ctx context.Context, id string) (model.Score, error) {
	s, err := e.store.Get(ctx, id)
	switch {
	case errors.Is(err, model.ErrScoreNotFound):
		return model.Score{}, fmt.Errorf("score %s: %w", id, model.ErrScoreNotFound)
	case err != nil:
		return model.Score{}, &StorageError{Op: "get", Err: err}
	}
	return s, nil
}

func (e *Evaluator) fail(span trace.Span, err error) error {
	metrics.RecordScoringError(errorKind(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
