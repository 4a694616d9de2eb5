// Package swagger serves the OpenAPI description of the scoring API and a
// Swagger UI for browsing it.
package swagger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/http/api"
	service "github.com/Vuyani-Magibisela/GSCMS-sub009/internal/app"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

const (
	title   = "GSCMS Scoring API"
	version = "1.0.0"
)

// ErrorResponse mirrors the error body written by the API.
type ErrorResponse struct {
	Code      string  `json:"code"`
	Message   string  `json:"message"`
	Field     string  `json:"field,omitempty"`
	Criterion string  `json:"criterion,omitempty"`
	Points    float64 `json:"points,omitempty"`
}

type judgeHeader struct {
	JudgeID string `header:"X-Judge-ID" required:"true" description:"Judge resolved by the upstream authenticator."`
}

type scorePath struct {
	ScoreID string `path:"scoreID"`
}

type teamScoresPath struct {
	CompetitionID string `path:"competitionID"`
	TeamID        string `path:"teamID"`
}

type leaderboardQuery struct {
	CompetitionID string `path:"competitionID"`
	Limit         int    `query:"limit" minimum:"1" default:"10"`
}

type consistencyQuery struct {
	TeamID         string `query:"team_id" required:"true"`
	CompetitionID  string `query:"competition_id" required:"true"`
	ExcludeJudgeID string `query:"exclude_judge_id"`
}

type advisoriesQuery struct {
	CompetitionID string `query:"competition_id"`
	Limit         int    `query:"limit" minimum:"1" default:"50"`
}

type rubricPath struct {
	RubricID string `path:"rubricID"`
}

type operation struct {
	method, path, summary string
	req                   []any
	resp                  map[int]any
}

var operations = []operation{
	{http.MethodPost, "/api/scores", "Save a judge's score", []any{judgeHeader{}, api.ScoreRequest{}}, map[int]any{
		http.StatusOK: service.ScoreResult{}, http.StatusBadRequest: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{},
		http.StatusConflict: ErrorResponse{}, http.StatusUnprocessableEntity: ErrorResponse{}, http.StatusTooManyRequests: ErrorResponse{},
	}},
	{http.MethodGet, "/api/scores/{scoreID}", "Fetch a score", []any{judgeHeader{}, scorePath{}}, map[int]any{
		http.StatusOK: model.Score{}, http.StatusNotFound: ErrorResponse{},
	}},
	{http.MethodPost, "/api/scores/{scoreID}/submit", "Submit a score and check consistency", []any{judgeHeader{}, scorePath{}}, map[int]any{
		http.StatusOK: service.ScoreResult{}, http.StatusForbidden: ErrorResponse{}, http.StatusNotFound: ErrorResponse{},
		http.StatusConflict: ErrorResponse{},
	}},
	{http.MethodGet, "/api/consistency", "Report judge agreement for a team", []any{consistencyQuery{}}, map[int]any{
		http.StatusOK: model.ConsistencyReport{}, http.StatusBadRequest: ErrorResponse{},
	}},
	{http.MethodGet, "/api/competitions/{competitionID}/teams/{teamID}/scores", "List a team's scores", []any{teamScoresPath{}}, map[int]any{
		http.StatusOK: []model.Score{},
	}},
	{http.MethodGet, "/api/competitions/{competitionID}/leaderboard", "Rank teams in a competition", []any{leaderboardQuery{}}, map[int]any{
		http.StatusOK: []model.LeaderboardEntry{}, http.StatusBadRequest: ErrorResponse{},
	}},
	{http.MethodPost, "/api/rubrics", "Create or replace a rubric", []any{model.Rubric{}}, map[int]any{
		http.StatusCreated: model.Rubric{}, http.StatusBadRequest: ErrorResponse{}, http.StatusUnprocessableEntity: ErrorResponse{},
	}},
	{http.MethodGet, "/api/rubrics/{rubricID}", "Fetch a rubric", []any{rubricPath{}}, map[int]any{
		http.StatusOK: model.Rubric{}, http.StatusNotFound: ErrorResponse{},
	}},
	{http.MethodGet, "/api/advisories", "Poll judge disagreement advisories", []any{advisoriesQuery{}}, map[int]any{
		http.StatusOK: []model.Advisory{}, http.StatusBadRequest: ErrorResponse{},
	}},
	{http.MethodGet, "/healthz", "Store health", nil, map[int]any{
		http.StatusOK: api.HealthResponse{}, http.StatusServiceUnavailable: api.HealthResponse{},
	}},
	{http.MethodGet, "/stats", "Service statistics", nil, map[int]any{
		http.StatusOK: map[string]any{},
	}},
}

// NewSpec reflects the API operations into an OpenAPI 3 document.
func NewSpec() (*openapi3.Spec, error) {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = title
	r.Spec.Info.Version = version
	r.Spec.Info.WithDescription("Judge scoring and consistency evaluation.")

	var errs []error
	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		oc.SetSummary(op.summary)
		for _, req := range op.req {
			oc.AddReqStructure(req)
		}
		for status, body := range op.resp {
			oc.AddRespStructure(body, openapi.WithHTTPStatus(status))
		}
		if err := r.AddOperation(oc); err != nil {
			errs = append(errs, err)
		}
	}
	return r.Spec, errors.Join(errs...)
}

// Handler serves the OpenAPI document as JSON.
func Handler() http.HandlerFunc {
	spec, _ := NewSpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// Register attaches the API docs routes to r.
//
//	GET /openapi.json -> OpenAPI document
//	GET /docs         -> Swagger UI
func Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/openapi.json", Handler())
	r.Mount("/docs", v5emb.New(title, "/openapi.json", "/docs"))
}
