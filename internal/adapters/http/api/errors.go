package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/repository"
	service "github.com/Vuyani-Magibisela/GSCMS-sub009/internal/app"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("judge identity required")
	ErrRateLimited  = errors.New("autosave rate exceeded")
	ErrUnavailable  = errors.New("store unavailable")

	errMissingParams = errors.New("team_id and competition_id are required")
)

// KindError tags an underlying error with an operation and a sentinel kind.
// errors.Is matches both the kind and the wrapped cause.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *KindError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind tags err with kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// Wrap records op on err and keeps its own classification.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Op: op, Err: err}
}

type errorResponse struct {
	Code      string  `json:"code"`
	Message   string  `json:"message"`
	Field     string  `json:"field,omitempty"`
	Criterion string  `json:"criterion,omitempty"`
	Points    float64 `json:"points,omitempty"`
}

// writeError maps err onto a status code and a stable error code, and
// returns the status written.
func writeError(w http.ResponseWriter, err error) int {
	resp := errorResponse{Message: err.Error()}
	status := http.StatusInternalServerError

	var (
		verr *scoring.ValidationError
		serr *scoring.StateError
	)
	switch {
	case errors.As(err, &verr):
		status, resp.Code = http.StatusUnprocessableEntity, "validation_failed"
		resp.Field, resp.Criterion, resp.Points = verr.Field, verr.Criterion, verr.Points
	case errors.As(err, &serr):
		status, resp.Code = http.StatusConflict, "score_locked"
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidLimit):
		status, resp.Code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized):
		status, resp.Code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrNotOwner):
		status, resp.Code = http.StatusForbidden, "forbidden"
	case errors.Is(err, model.ErrScoreNotFound), errors.Is(err, model.ErrRubricNotFound):
		status, resp.Code = http.StatusNotFound, "not_found"
	case errors.Is(err, ErrRateLimited):
		status, resp.Code = http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrUnavailable):
		status, resp.Code = http.StatusServiceUnavailable, "unavailable"
	default:
		// Storage details stay in the logs.
		resp.Code, resp.Message = "internal_error", http.StatusText(http.StatusInternalServerError)
	}
	writeJSON(w, status, resp)
	return status
}
