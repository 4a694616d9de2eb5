package scoring

import (
	"errors"
	"fmt"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// Sentinel kinds. Every typed error below matches exactly one of them via errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrState      = errors.New("invalid score state")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError rejects caller input. Nothing is persisted when it is returned.
type ValidationError struct {
	Field     string
	Criterion string
	Points    float64
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Criterion != "" {
		return fmt.Sprintf("criterion %q: points %g %s", e.Criterion, e.Points, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StateError rejects a transition on a score that is already validated or final.
type StateError struct {
	ScoreID string
	Status  model.Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("score %s is %s and can no longer be changed", e.ScoreID, e.Status)
}

// Is reports whether target is ErrState.
func (e *StateError) Is(target error) bool { return target == ErrState }

// StorageError wraps a failure of the backing store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }

// errorKind names the failure class for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, model.ErrScoreNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}
