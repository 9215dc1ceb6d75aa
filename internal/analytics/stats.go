// Package analytics computes aggregate statistics over stored
// evaluation results and runs signal analysis over conversation
// populations, producing insights for the dashboard.
package analytics

import (
	"math"

	"github.com/sells-group/convoeval/internal/model"
)

// CriterionStats is the per-criterion aggregate over a result set.
type CriterionStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Stats summarizes a set of evaluation results. An empty set yields
// zero values throughout.
type Stats struct {
	TotalEvaluations int                       `json:"total_evaluations"`
	AverageScore     float64                   `json:"average_score"`
	PassRate         float64                   `json:"pass_rate"`
	Criteria         map[string]CriterionStats `json:"criteria"`
	HighestScore     float64                   `json:"highest_score"`
	LowestScore      float64                   `json:"lowest_score"`
}

// ComputeStats aggregates evaluation results. Missing criteria in old
// records are read leniently as 0 rather than rejected.
func ComputeStats(results []model.EvaluationResult) Stats {
	stats := Stats{Criteria: make(map[string]CriterionStats)}
	if len(results) == 0 {
		return stats
	}

	stats.TotalEvaluations = len(results)
	stats.HighestScore = results[0].OverallScore
	stats.LowestScore = results[0].OverallScore

	var sum float64
	var passed int
	for _, r := range results {
		sum += r.OverallScore
		if r.Passed {
			passed++
		}
		stats.HighestScore = math.Max(stats.HighestScore, r.OverallScore)
		stats.LowestScore = math.Min(stats.LowestScore, r.OverallScore)
	}
	n := float64(len(results))
	stats.AverageScore = round2(sum / n)
	stats.PassRate = round2(float64(passed) / n * 100)

	for _, name := range model.KnownCriteria() {
		cs := CriterionStats{
			Min: results[0].CriterionScore(name),
			Max: results[0].CriterionScore(name),
		}
		var csum float64
		for _, r := range results {
			score := r.CriterionScore(name)
			csum += score
			cs.Min = math.Min(cs.Min, score)
			cs.Max = math.Max(cs.Max, score)
		}
		cs.Mean = round2(csum / n)
		stats.Criteria[name] = cs
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
