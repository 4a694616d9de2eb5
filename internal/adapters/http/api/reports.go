package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	const op = "api.consistency"
	q := r.URL.Query()
	teamID := strings.TrimSpace(q.Get("team_id"))
	competitionID := strings.TrimSpace(q.Get("competition_id"))
	if teamID == "" || competitionID == "" {
		s.fail(w, r, WrapKind(op, ErrBadRequest, errMissingParams))
		return
	}

	rep, err := s.deps.CheckConsistency(r.Context(), teamID, competitionID, strings.TrimSpace(q.Get("exclude_judge_id")))
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaderboard"
	limit, err := queryLimit(r, op, defaultLeaderboardLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries, err := s.deps.Leaderboard(r.Context(), chi.URLParam(r, "competitionID"), limit)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAdvisories(w http.ResponseWriter, r *http.Request) {
	const op = "api.advisories"
	limit, err := queryLimit(r, op, defaultAdvisoryLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.deps.Advisories(r.Context(), strings.TrimSpace(r.URL.Query().Get("competition_id")), limit)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if out == nil {
		out = []model.Advisory{}
	}
	writeJSON(w, http.StatusOK, out)
}
