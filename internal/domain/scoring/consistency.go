package scoring

import (
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// DefaultThresholdPct is the spread above which judges are considered to disagree.
const DefaultThresholdPct = 15.0

// Evaluate aggregates judge totals and classifies their spread against
// thresholdPct. Fewer than two totals, or a zero mean, cannot show
// disagreement and are reported as consistent with a zero spread.
func Evaluate(totals []float64, thresholdPct float64) model.ConsistencyReport {
	rep := model.ConsistencyReport{
		JudgeCount:   len(totals),
		ThresholdPct: thresholdPct,
		Consistent:   true,
	}
	if len(totals) == 0 {
		return rep
	}

	var sum float64
	rep.Min, rep.Max = totals[0], totals[0]
	for _, t := range totals {
		sum += t
		if t < rep.Min {
			rep.Min = t
		}
		if t > rep.Max {
			rep.Max = t
		}
	}
	rep.Mean = sum / float64(len(totals))

	if len(totals) < 2 || rep.Mean == 0 {
		return rep
	}

	rep.SpreadPct = (rep.Max - rep.Min) / rep.Mean * 100
	rep.Consistent = rep.SpreadPct <= thresholdPct
	return rep
}
