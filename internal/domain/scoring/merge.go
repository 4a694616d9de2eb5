package scoring

import (
	"maps"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// Merge applies a record request onto the stored score for the same
// (judge, team, competition), or builds a fresh score when existing is nil.
//
// An existing score keeps its status unless the request names one. A fresh
// score starts in_progress unless the request names a status. SubmittedAt is
// stamped on entering submitted and cleared when the score leaves the
// counted states.
func Merge(existing *model.Score, in RecordInput, totals Totals, now time.Time) model.Score {
	var s model.Score
	if existing != nil {
		s = *existing
	} else {
		s = model.Score{
			TeamID:        in.TeamID,
			CompetitionID: in.CompetitionID,
			JudgeID:       in.JudgeID,
			Status:        model.StatusInProgress,
			CreatedAt:     now,
		}
	}

	prev := s.Status
	if in.Status != "" {
		s.Status = in.Status
	}

	s.RubricID = in.RubricID
	s.Points = maps.Clone(in.Points)
	if s.Points == nil {
		s.Points = map[string]float64{}
	}
	s.Notes = in.Notes
	s.DurationMinutes = in.DurationMinutes
	s.TotalScore = totals.Total
	s.NormalizedScore = totals.Normalized
	s.Fingerprint = in.Fingerprint
	s.UpdatedAt = now

	switch {
	case s.Status == model.StatusSubmitted && (prev != model.StatusSubmitted || s.SubmittedAt == nil):
		at := now
		s.SubmittedAt = &at
	case !s.Status.Counted():
		s.SubmittedAt = nil
	}

	return s
}
