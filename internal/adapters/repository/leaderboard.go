package repository

import (
	"context"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// Leaderboard ranks teams in a competition by the mean total of their
// submitted, validated and final scores. Ties share the order of team id.
func (s *SQLStore) Leaderboard(ctx context.Context, competitionID string, limit int) ([]model.LeaderboardEntry, error) {
	defer s.observe("leaderboard", time.Now())

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, COUNT(*), AVG(total_score), AVG(normalized_score)
		FROM scores
		WHERE competition_id = ? AND status IN ('submitted', 'validated', 'final')
		GROUP BY team_id
		ORDER BY AVG(total_score) DESC, team_id
		LIMIT ?
	`, competitionID, limit)
	if err != nil {
		return nil, s.fail("leaderboard", err)
	}
	defer rows.Close()

	var out []model.LeaderboardEntry
	for rows.Next() {
		e := model.LeaderboardEntry{Rank: len(out) + 1}
		if err := rows.Scan(&e.TeamID, &e.JudgeCount, &e.MeanScore, &e.MeanNormalized); err != nil {
			return nil, s.fail("leaderboard", err)
		}
		out = append(out, e)
	}
	return out, s.fail("leaderboard", rows.Err())
}
