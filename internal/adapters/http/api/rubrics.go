package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

func (s *Server) handleCreateRubric(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_rubric"
	var rub model.Rubric
	if err := decodeJSON(w, r, op, &rub); err != nil {
		s.fail(w, r, err)
		return
	}
	for i := range rub.Criteria {
		if rub.Criteria[i].Position == 0 {
			rub.Criteria[i].Position = i + 1
		}
	}
	if err := s.deps.SaveRubric(r.Context(), rub); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, rub)
}

func (s *Server) handleGetRubric(w http.ResponseWriter, r *http.Request) {
	rub, err := s.deps.Rubric(r.Context(), chi.URLParam(r, "rubricID"))
	if err != nil {
		s.fail(w, r, Wrap("api.get_rubric", err))
		return
	}
	writeJSON(w, http.StatusOK, rub)
}
