// Package api exposes the scoring service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/Vuyani-Magibisela/GSCMS-sub009/internal/app"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/scoring"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
)

const (
	maxBodyBytes            = 1 << 20
	defaultLeaderboardLimit = 10
	defaultAdvisoryLimit    = 50
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	RecordScore(ctx context.Context, in scoring.RecordInput) (service.ScoreResult, error)
	SubmitScore(ctx context.Context, judgeID, scoreID string) (service.ScoreResult, error)
	GetScore(ctx context.Context, id string) (model.Score, error)
	ListScores(ctx context.Context, teamID, competitionID string) ([]model.Score, error)
	CheckConsistency(ctx context.Context, teamID, competitionID, excludeJudgeID string) (model.ConsistencyReport, error)
	Leaderboard(ctx context.Context, competitionID string, limit int) ([]model.LeaderboardEntry, error)
	Advisories(ctx context.Context, competitionID string, limit int) ([]model.Advisory, error)
	SaveRubric(ctx context.Context, r model.Rubric) error
	Rubric(ctx context.Context, id string) (model.Rubric, error)
	Health(ctx context.Context) error
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	deps     Dependencies
	stats    StatsProvider
	resolver JudgeResolver
	limiter  *judgeLimiter
	logger   logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithJudgeResolver replaces the header-based judge resolver.
func WithJudgeResolver(r JudgeResolver) Option {
	return func(s *Server) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithAutosaveRate sets the per-judge token bucket for score saves.
func WithAutosaveRate(perSec float64, burst int) Option {
	return func(s *Server) {
		if perSec > 0 && burst > 0 {
			s.limiter = newJudgeLimiter(perSec, burst, defaultTrackedJudges)
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		stats:    stats,
		resolver: HeaderJudgeResolver{},
		limiter:  newJudgeLimiter(2, 10, defaultTrackedJudges),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Router builds the chi router with every route registered.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	s.Register(r)
	return r
}

// Register attaches all routes to r.
func (s *Server) Register(r chi.Router) {
	r.With(MetricsMiddleware("healthz")).Get("/healthz", s.handleHealth)
	r.With(MetricsMiddleware("stats")).Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", metricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/scores", func(r chi.Router) {
			r.Use(requireJudge(s.resolver))
			r.With(MetricsMiddleware("record_score"), s.limiter.middleware).Post("/", s.handleRecordScore)
			r.With(MetricsMiddleware("get_score")).Get("/{scoreID}", s.handleGetScore)
			r.With(MetricsMiddleware("submit_score")).Post("/{scoreID}/submit", s.handleSubmitScore)
		})
		r.With(MetricsMiddleware("consistency")).Get("/consistency", s.handleConsistency)
		r.With(MetricsMiddleware("team_scores")).Get("/competitions/{competitionID}/teams/{teamID}/scores", s.handleListScores)
		r.With(MetricsMiddleware("leaderboard")).Get("/competitions/{competitionID}/leaderboard", s.handleLeaderboard)
		r.With(MetricsMiddleware("create_rubric")).Post("/rubrics", s.handleCreateRubric)
		r.With(MetricsMiddleware("get_rubric")).Get("/rubrics/{rubricID}", s.handleGetRubric)
		r.With(MetricsMiddleware("advisories")).Get("/advisories", s.handleAdvisories)
	})
}

// fail writes err and logs it when the server is at fault.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := writeError(w, err); status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// queryLimit parses ?limit, falling back to def when absent.
func queryLimit(r *http.Request, op string, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapKind(op, ErrBadRequest, err)
	}
	return n, nil
}
