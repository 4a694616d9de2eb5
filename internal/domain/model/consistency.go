package model

import "time"

// ConsistencyReport summarises how closely judges agree on a team's totals.
// It is computed on demand and never stored as such.
type ConsistencyReport struct {
	TeamID        string  `json:"team_id"`
	CompetitionID string  `json:"competition_id"`
	JudgeCount    int     `json:"judge_count"`
	Mean          float64 `json:"mean"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	SpreadPct     float64 `json:"spread_pct"`
	ThresholdPct  float64 `json:"threshold_pct"`
	Consistent    bool    `json:"consistent"`
}

// Advisory records a conflicting report for supervising admins.
type Advisory struct {
	ID            string    `json:"id"`
	TeamID        string    `json:"team_id"`
	CompetitionID string    `json:"competition_id"`
	JudgeCount    int       `json:"judge_count"`
	Mean          float64   `json:"mean"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	SpreadPct     float64   `json:"spread_pct"`
	ThresholdPct  float64   `json:"threshold_pct"`
	TriggeredBy   string    `json:"triggered_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAdvisory builds an advisory from a conflicting report.
func NewAdvisory(r ConsistencyReport, triggeredBy string, at time.Time) Advisory {
	return Advisory{
		TeamID:        r.TeamID,
		CompetitionID: r.CompetitionID,
		JudgeCount:    r.JudgeCount,
		Mean:          r.Mean,
		Min:           r.Min,
		Max:           r.Max,
		SpreadPct:     r.SpreadPct,
		ThresholdPct:  r.ThresholdPct,
		TriggeredBy:   triggeredBy,
		CreatedAt:     at,
	}
}

// LeaderboardEntry is one team's standing within a competition.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	TeamID         string  `json:"team_id"`
	JudgeCount     int     `json:"judge_count"`
	MeanScore      float64 `json:"mean_score"`
	MeanNormalized float64 `json:"mean_normalized"`
}
