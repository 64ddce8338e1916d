package analyzer

import "math"

type Status string

const (
	StatusExcellent        Status = "Excellent"
	StatusGood             Status = "Good"
	StatusNeedsImprovement Status = "Needs Improvement"
	StatusPoor             Status = "Poor"
)

const DefaultFeedback = "Outstanding posture! You project confidence and professionalism."

// Band is the half-open interval [Min, Max) of a signal mapped to a
// deduction. A zero Deduction band emits no feedback.
type Band struct {
	Min       float64
	Max       float64
	Deduction int
	Message   string
}

func (b Band) contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// Rule is the band table for one signal. Bands must tile the real line.
type Rule struct {
	Signal string
	Bands  []Band
}

func (r Rule) match(v float64) (Band, bool) {
	for _, b := range r.Bands {
		if b.contains(v) {
			return b, true
		}
	}
	return Band{}, false
}

var inf = math.Inf(1)

// Rules are evaluated in this order and feedback keeps it.
var Rules = []Rule{
	{
		Signal: "confidence",
		Bands: []Band{
			{Min: -inf, Max: 50, Deduction: 25, Message: "Low detection confidence — ensure full upper body is visible."},
			{Min: 50, Max: inf},
		},
	},
	{
		Signal: "shoulder_angle",
		Bands: []Band{
			{Min: -inf, Max: 5},
			{Min: 5, Max: 12, Deduction: 10, Message: "Slight shoulder imbalance — try to level both shoulders."},
			{Min: 12, Max: inf, Deduction: 25, Message: "Uneven shoulders detected — check your seating and straighten up."},
		},
	},
	{
		Signal: "neck_angle",
		Bands: []Band{
			{Min: -inf, Max: 10},
			{Min: 10, Max: 20, Deduction: 15, Message: "Mild forward head posture — draw your head back slightly."},
			{Min: 20, Max: inf, Deduction: 30, Message: "Significant forward neck tilt — align your ears directly over your shoulders."},
		},
	},
	{
		Signal: "head_tilt",
		Bands: []Band{
			{Min: -inf, Max: 5},
			{Min: 5, Max: 10, Deduction: 5, Message: "Slight head tilt — keep your head level for a confident look."},
			{Min: 10, Max: inf, Deduction: 15, Message: "Noticeable head tilt — straighten your head position."},
		},
	},
	{
		Signal: "spine_angle",
		Bands: []Band{
			{Min: -inf, Max: 8},
			{Min: 8, Max: 15, Deduction: 10, Message: "Mild slouching — sit up straight and engage your core."},
			{Min: 15, Max: inf, Deduction: 25, Message: "Significant slouching detected — sit tall with your back against the chair."},
		},
	},
}

// Measurements are the inputs of Score.
type Measurements struct {
	ShoulderAngle float64
	NeckAngle     float64
	HeadTilt      float64
	SpineAngle    float64
	Confidence    float64
}

func (m Measurements) signal(name string) float64 {
	switch name {
	case "confidence":
		return m.Confidence
	case "shoulder_angle":
		return m.ShoulderAngle
	case "neck_angle":
		return m.NeckAngle
	case "head_tilt":
		return m.HeadTilt
	case "spine_angle":
		return m.SpineAngle
	}
	return math.NaN()
}

// Score sums the band deductions for m, clamps 100 minus the total into
// [0,100] once, and returns the score, status and ordered feedback.
func Score(m Measurements) (int, Status, []string) {
	deductions := 0
	feedback := make([]string, 0, len(Rules))

	for _, rule := range Rules {
		band, ok := rule.match(m.signal(rule.Signal))
		if !ok || band.Deduction == 0 {
			continue
		}
		deductions += band.Deduction
		feedback = append(feedback, band.Message)
	}

	score := clampScore(100 - deductions)

	if len(feedback) == 0 {
		feedback = append(feedback, DefaultFeedback)
	}

	return score, StatusFor(score), feedback
}

// StatusFor maps a score to its status band.
func StatusFor(score int) Status {
	switch {
	case score >= 85:
		return StatusExcellent
	case score >= 65:
		return StatusGood
	case score >= 45:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
