package repository

import (
	"errors"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrDuplicateKey is model.ErrScoreExists so the evaluator can recover
	// from a lost insert race without importing this package.
	ErrDuplicateKey = model.ErrScoreExists
)
