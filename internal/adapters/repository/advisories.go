package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// SaveAdvisory stores a conflict advisory.
func (s *SQLStore) SaveAdvisory(ctx context.Context, a model.Advisory) error { //nolint:gocritic // hugeParam
	defer s.observe("save_advisory", time.Now())

	created := a.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consistency_advisories
			(id, team_id, competition_id, judge_count, mean, min_total, max_total,
			 spread_pct, threshold_pct, triggered_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.TeamID, a.CompetitionID, a.JudgeCount, a.Mean, a.Min, a.Max,
		a.SpreadPct, a.ThresholdPct, a.TriggeredBy, created.UTC().Format(timeLayout))
	return s.fail("save_advisory", err)
}

// ListAdvisories returns the newest advisories first. An empty competitionID
// lists every competition.
func (s *SQLStore) ListAdvisories(ctx context.Context, competitionID string, limit int) ([]model.Advisory, error) {
	defer s.observe("list_advisories", time.Now())

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_id, competition_id, judge_count, mean, min_total, max_total,
		       spread_pct, threshold_pct, triggered_by, created_at
		FROM consistency_advisories
		WHERE ? = '' OR competition_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`, competitionID, competitionID, limit)
	if err != nil {
		return nil, s.fail("list_advisories", err)
	}
	defer rows.Close()

	var out []model.Advisory
	for rows.Next() {
		var (
			a       model.Advisory
			created string
		)
		if err := rows.Scan(&a.ID, &a.TeamID, &a.CompetitionID, &a.JudgeCount, &a.Mean, &a.Min, &a.Max,
			&a.SpreadPct, &a.ThresholdPct, &a.TriggeredBy, &created); err != nil {
			return nil, s.fail("list_advisories", err)
		}
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, s.fail("list_advisories", fmt.Errorf("parsing created_at of advisory %s: %w", a.ID, err))
		}
		out = append(out, a)
	}
	return out, s.fail("list_advisories", rows.Err())
}
