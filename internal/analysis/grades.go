package analysis

import (
	"fmt"

	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// scoreEdges are the histogram bucket bounds. Buckets are half-open except the
// last, which is closed at 100.
var scoreEdges = []float64{0, 60, 70, 80, 90, 100}

// AnalyzeGrades computes score statistics, per-course trends and patterns.
// Ungraded records count toward TotalAssignments only.
func AnalyzeGrades(grades []models.GradeRecord) models.GradeAnalysis {
	if len(grades) == 0 {
		return models.GradeAnalysis{}
	}

	scores := gradedScores(grades)
	lo, hi := minMax(scores)
	out := models.GradeAnalysis{
		Stats: &models.GradeStats{
			AverageScore:         mean(scores),
			HighestScore:         hi,
			LowestScore:          lo,
			ScoreStd:             sampleStdDev(scores),
			TotalAssignments:     len(grades),
			CompletedAssignments: len(scores),
		},
	}

	patterns := histogram(scores)
	for _, g := range normalize.Group(grades, func(r models.GradeRecord) string { return r.CourseID }) {
		course := gradedScores(g.Records)
		if len(course) < 2 {
			continue
		}
		trend := ClassifyTrend(course)
		if out.Trends == nil {
			out.Trends = make(map[string]models.TrendInfo)
		}
		out.Trends[g.Key] = models.TrendInfo{
			Trend:    trend,
			Average:  mean(course),
			Variance: popVariance(course),
		}
		patterns = append(patterns, models.GradePattern{
			Type: models.PatternProgression,
			CourseProgression: &models.CourseProgression{
				CourseID:   g.Key,
				Trend:      trend,
				StartScore: course[0],
				EndScore:   course[len(course)-1],
			},
		})
	}
	out.Patterns = patterns

	return out
}

func gradedScores(grades []models.GradeRecord) []float64 {
	scores := make([]float64, 0, len(grades))
	for _, g := range grades {
		if g.Graded() {
			scores = append(scores, *g.Score)
		}
	}
	return scores
}

// histogram buckets scores by scoreEdges and returns the non-empty buckets.
// Out-of-range scores are clamped into the first or last bucket.
func histogram(scores []float64) []models.GradePattern {
	if len(scores) == 0 {
		return nil
	}
	n := len(scoreEdges) - 1
	counts := make([]int, n)
	for _, s := range scores {
		counts[bucketIndex(s)]++
	}

	var out []models.GradePattern
	for i, c := range counts {
		if c == 0 {
			continue
		}
		out = append(out, models.GradePattern{
			Type: models.PatternGradeRange,
			ScoreBucket: &models.ScoreBucket{
				Range:      fmt.Sprintf("%g-%g", scoreEdges[i], scoreEdges[i+1]),
				Count:      c,
				Percentage: float64(c) / float64(len(scores)),
			},
		})
	}
	return out
}

func bucketIndex(score float64) int {
	last := len(scoreEdges) - 2
	for i := 0; i < last; i++ {
		if score < scoreEdges[i+1] {
			return i
		}
	}
	return last
}
