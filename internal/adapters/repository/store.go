package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/metrics"
)

// timeLayout is fixed width so text columns sort chronologically. Reads go
// through parseTime: the driver may hand the value back trimmed.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore persists scores, rubrics and advisories. The one-score-per-judge
// rule is a UNIQUE constraint on (judge_id, team_id, competition_id).
type SQLStore struct {
	db     *sql.DB
	now    func() time.Time
	logger logger.Logger
}

// NewSQLStore wraps a migrated database.
func NewSQLStore(db *sql.DB, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}
	return s
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	defer s.observe("ping", time.Now())
	return s.db.PingContext(ctx)
}

const scoreColumns = `id, team_id, competition_id, judge_id, rubric_id, points, notes,
	total_score, normalized_score, status, duration_minutes, fingerprint,
	created_at, updated_at, submitted_at`

// FindByKey returns the score a judge holds for a team in a competition.
func (s *SQLStore) FindByKey(ctx context.Context, key model.ScoreKey) (model.Score, error) {
	defer s.observe("find_by_key", time.Now())

	row := s.db.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM scores
		WHERE judge_id = ? AND team_id = ? AND competition_id = ?`,
		key.JudgeID, key.TeamID, key.CompetitionID)
	sc, err := scanScore(row)
	return sc, s.fail("find_by_key", err)
}

// Get returns a score by id.
func (s *SQLStore) Get(ctx context.Context, id string) (model.Score, error) {
	defer s.observe("get", time.Now())

	row := s.db.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM scores WHERE id = ?`, id)
	sc, err := scanScore(row)
	return sc, s.fail("get", err)
}

// Insert writes a new score. A second score for the same key fails with
// ErrDuplicateKey.
func (s *SQLStore) Insert(ctx context.Context, sc model.Score) error { //nolint:gocritic // hugeParam: value keeps callers from aliasing
	defer s.observe("insert", time.Now())

	args, err := scoreArgs(sc)
	if err != nil {
		return s.fail("insert", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO scores (`+scoreColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		err = fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return s.fail("insert", err)
}

// Update overwrites the mutable columns of an existing score.
func (s *SQLStore) Update(ctx context.Context, sc model.Score) error { //nolint:gocritic // hugeParam: value keeps callers from aliasing
	defer s.observe("update", time.Now())

	points, err := json.Marshal(sc.Points)
	if err != nil {
		return s.fail("update", fmt.Errorf("encoding points: %w", err))
	}
	fp, err := json.Marshal(sc.Fingerprint)
	if err != nil {
		return s.fail("update", fmt.Errorf("encoding fingerprint: %w", err))
	}

	res, err := s.db.ExecContext(ctx, `UPDATE scores SET
		rubric_id = ?, points = ?, notes = ?, total_score = ?, normalized_score = ?,
		status = ?, duration_minutes = ?, fingerprint = ?, updated_at = ?, submitted_at = ?
		WHERE id = ?`,
		sc.RubricID, string(points), sc.Notes, sc.TotalScore, sc.NormalizedScore,
		string(sc.Status), nullInt(sc.DurationMinutes), string(fp),
		sc.UpdatedAt.UTC().Format(timeLayout), nullTime(sc.SubmittedAt), sc.ID)
	if err != nil {
		return s.fail("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail("update", err)
	}
	if n == 0 {
		return fmt.Errorf("score %s: %w", sc.ID, model.ErrScoreNotFound)
	}
	return nil
}

// ListByTeam returns a team's scores in a competition ordered by judge.
// A nil statuses slice returns every status.
func (s *SQLStore) ListByTeam(ctx context.Context, teamID, competitionID string, statuses []model.Status) ([]model.Score, error) {
	defer s.observe("list_by_team", time.Now())

	query := `SELECT ` + scoreColumns + ` FROM scores WHERE team_id = ? AND competition_id = ?`
	args := []any{teamID, competitionID}
	if statuses != nil {
		if len(statuses) == 0 {
			return nil, nil
		}
		query += ` AND status IN (?` + strings.Repeat(", ?", len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY judge_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("list_by_team", err)
	}
	defer rows.Close()

	var out []model.Score
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, s.fail("list_by_team", err)
		}
		out = append(out, sc)
	}
	return out, s.fail("list_by_team", rows.Err())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScore(row scanner) (model.Score, error) {
	var (
		sc                 model.Score
		points, fp, status string
		created, updated   string
		duration           sql.NullInt64
		submitted          sql.NullString
	)
	err := row.Scan(&sc.ID, &sc.TeamID, &sc.CompetitionID, &sc.JudgeID, &sc.RubricID,
		&points, &sc.Notes, &sc.TotalScore, &sc.NormalizedScore, &status, &duration, &fp,
		&created, &updated, &submitted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Score{}, model.ErrScoreNotFound
	}
	if err != nil {
		return model.Score{}, err
	}

	sc.Status = model.Status(status)
	if err := json.Unmarshal([]byte(points), &sc.Points); err != nil {
		return model.Score{}, fmt.Errorf("decoding points of score %s: %w", sc.ID, err)
	}
	if sc.Points == nil {
		sc.Points = map[string]float64{}
	}
	if err := json.Unmarshal([]byte(fp), &sc.Fingerprint); err != nil {
		return model.Score{}, fmt.Errorf("decoding fingerprint of score %s: %w", sc.ID, err)
	}
	if duration.Valid {
		d := int(duration.Int64)
		sc.DurationMinutes = &d
	}
	if sc.CreatedAt, err = parseTime(created); err != nil {
		return model.Score{}, fmt.Errorf("parsing created_at of score %s: %w", sc.ID, err)
	}
	if sc.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Score{}, fmt.Errorf("parsing updated_at of score %s: %w", sc.ID, err)
	}
	if submitted.Valid {
		t, err := parseTime(submitted.String)
		if err != nil {
			return model.Score{}, fmt.Errorf("parsing submitted_at of score %s: %w", sc.ID, err)
		}
		sc.SubmittedAt = &t
	}
	return sc, nil
}

func scoreArgs(sc model.Score) ([]any, error) { //nolint:gocritic // hugeParam
	points := sc.Points
	if points == nil {
		points = map[string]float64{}
	}
	p, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("encoding points: %w", err)
	}
	fp, err := json.Marshal(sc.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("encoding fingerprint: %w", err)
	}
	return []any{
		sc.ID, sc.TeamID, sc.CompetitionID, sc.JudgeID, sc.RubricID, string(p), sc.Notes,
		sc.TotalScore, sc.NormalizedScore, string(sc.Status), nullInt(sc.DurationMinutes), string(fp),
		sc.CreatedAt.UTC().Format(timeLayout), sc.UpdatedAt.UTC().Format(timeLayout), nullTime(sc.SubmittedAt),
	}, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

// parseTime accepts any fraction length, including none.
func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (s *SQLStore) observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// fail counts and logs unexpected errors. Not-found results pass through untouched.
func (s *SQLStore) fail(op string, err error) error {
	if err == nil || errors.Is(err, model.ErrScoreNotFound) || errors.Is(err, model.ErrRubricNotFound) {
		return err
	}
	metrics.RecordStoreError(op)
	s.logger.Error(context.Background(), "store operation failed", logger.String("op", op), logger.Error(err))
	return err
}
