// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"time"
)

// Store failures shared by stores and the evaluator.
var (
	ErrScoreNotFound  = errors.New("score not found")
	ErrRubricNotFound = errors.New("rubric not found")
	ErrScoreExists    = errors.New("score already exists for judge, team and competition")
)

// Status is the lifecycle state of a Score.
type Status string

// Score lifecycle states.
const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusValidated  Status = "validated"
	StatusFinal      Status = "final"
)

// CountedStatuses are the states that represent a judge's final opinion and
// therefore take part in consensus.
var CountedStatuses = []Status{StatusSubmitted, StatusValidated, StatusFinal}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusSubmitted, StatusValidated, StatusFinal:
		return true
	}
	return false
}

// Counted reports whether a score in this state counts toward consensus.
func (s Status) Counted() bool {
	return s == StatusSubmitted || s == StatusValidated || s == StatusFinal
}

// Locked reports whether the owning judge may no longer edit the score.
func (s Status) Locked() bool {
	return s == StatusValidated || s == StatusFinal
}

// ScoreKey identifies the single Score a judge may hold for a team in a competition.
type ScoreKey struct {
	JudgeID       string
	TeamID        string
	CompetitionID string
}

// Fingerprint is request metadata captured when a score is saved. It is
// stored for audit and never interpreted.
type Fingerprint struct {
	UserAgent  string    `json:"user_agent"`
	IP         string    `json:"ip"`
	CapturedAt time.Time `json:"captured_at"`
}

// Score is one judge's evaluation of one team in one competition.
type Score struct {
	ID              string             `json:"id"`
	TeamID          string             `json:"team_id"`
	CompetitionID   string             `json:"competition_id"`
	JudgeID         string             `json:"judge_id"`
	RubricID        string             `json:"rubric_id"`
	Points          map[string]float64 `json:"points"`
	Notes           string             `json:"notes,omitempty"`
	TotalScore      float64            `json:"total_score"`
	NormalizedScore float64            `json:"normalized_score"`
	Status          Status             `json:"status"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`
	Fingerprint     Fingerprint        `json:"fingerprint"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	SubmittedAt     *time.Time         `json:"submitted_at,omitempty"`
}

// Key returns the uniqueness key of the score.
func (s Score) Key() ScoreKey {
	return ScoreKey{JudgeID: s.JudgeID, TeamID: s.TeamID, CompetitionID: s.CompetitionID}
}
