package festival

import "math"

// gradeValues maps the letter grades a judge can award to their base value.
// An empty grade is worth 1; anything unrecognized is worth 0.
var gradeValues = map[string]float64{
	"A+": 5,
	"A":  4,
	"B":  3,
	"C":  2,
	"":   1,
}

// MaxPoints returns the normalized-points ceiling: 20 for group programs,
// 10 for individual ones.
func MaxPoints(isGroup bool) float64 {
	if isGroup {
		return 20
	}
	return 10
}

// CalculatePoints converts a raw judge score (0–100) and a letter grade into
// normalized points. Half of the ceiling is earned proportionally from the
// score; the other half comes from the grade, doubled for group programs.
// Scores outside [0,100] are clamped. The result is rounded to one decimal
// and capped at the ceiling.
func CalculatePoints(score float64, grade string, isGroup bool) float64 {
	score = math.Min(math.Max(score, 0), 100)
	maxPoints := MaxPoints(isGroup)

	scorePoints := (score / 100) * (maxPoints / 2)

	gradeMult := 1.0
	if isGroup {
		gradeMult = 2
	}
	gradePoints := gradeValues[grade] * gradeMult

	total := math.Round((scorePoints+gradePoints)*10) / 10
	return math.Min(total, maxPoints)
}
