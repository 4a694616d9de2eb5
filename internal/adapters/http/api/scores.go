package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/scoring"
)

// ScoreRequest is the body of POST /api/scores. The judge is taken from the
// caller's identity, never from the body.
type ScoreRequest struct {
	TeamID          string             `json:"team_id" required:"true"`
	CompetitionID   string             `json:"competition_id" required:"true"`
	RubricID        string             `json:"rubric_id" required:"true"`
	Points          map[string]float64 `json:"points"`
	Notes           string             `json:"notes,omitempty"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`
	Status          model.Status       `json:"status,omitempty" enum:"draft,in_progress,submitted"`
}

func (s *Server) handleRecordScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_score"
	var req ScoreRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.deps.RecordScore(r.Context(), scoring.RecordInput{
		TeamID:          req.TeamID,
		CompetitionID:   req.CompetitionID,
		JudgeID:         judgeFrom(r.Context()),
		RubricID:        req.RubricID,
		Points:          req.Points,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
		Fingerprint:     fingerprint(r),
	})
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	sc, err := s.deps.GetScore(r.Context(), chi.URLParam(r, "scoreID"))
	if err != nil {
		s.fail(w, r, Wrap("api.get_score", err))
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.SubmitScore(r.Context(), judgeFrom(r.Context()), chi.URLParam(r, "scoreID"))
	if err != nil {
		s.fail(w, r, Wrap("api.submit_score", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.deps.ListScores(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "competitionID"))
	if err != nil {
		s.fail(w, r, Wrap("api.list_scores", err))
		return
	}
	if scores == nil {
		scores = []model.Score{}
	}
	writeJSON(w, http.StatusOK, scores)
}

// fingerprint captures request metadata for the audit trail.
func fingerprint(r *http.Request) model.Fingerprint {
	return model.Fingerprint{
		UserAgent:  r.UserAgent(),
		IP:         r.RemoteAddr,
		CapturedAt: time.Now().UTC(),
	}
}
