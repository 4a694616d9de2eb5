package scoring

import (
	"math"
	"sort"
	"strconv"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// Totals are the figures derived from a judge's awarded points.
type Totals struct {
	Total      float64
	Normalized float64
}

// ComputeTotals checks every awarded criterion against the rubric and sums
// the points. Criteria the judge has not scored yet count as zero. The
// normalized score is a percentage of the rubric maximum rounded to one
// decimal, and 0 for a rubric whose maximum is 0.
func ComputeTotals(r model.Rubric, points map[string]float64) (Totals, error) {
	ids := make([]string, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		v := points[id]
		c, ok := r.Criterion(id)
		if !ok {
			return Totals{}, &ValidationError{Field: "points", Criterion: id, Points: v, Reason: "is not part of rubric " + r.ID}
		}
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return Totals{}, &ValidationError{Field: "points", Criterion: id, Points: v, Reason: "is not a finite number"}
		case v < 0:
			return Totals{}, &ValidationError{Field: "points", Criterion: id, Points: v, Reason: "is below 0"}
		case v > c.MaxPoints:
			return Totals{}, &ValidationError{Field: "points", Criterion: id, Points: v, Reason: "exceeds the maximum of " + formatPoints(c.MaxPoints)}
		}
	}

	var total float64
	for _, c := range r.Criteria {
		total += points[c.ID]
	}

	return Totals{Total: total, Normalized: Normalize(total, r.MaxTotal())}, nil
}

// Normalize expresses total as a percentage of maxTotal, rounded to one decimal.
func Normalize(total, maxTotal float64) float64 {
	if maxTotal == 0 {
		return 0
	}
	return math.Round(total/maxTotal*1000) / 10
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
