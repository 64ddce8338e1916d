package analyzer

import (
	"reflect"
	"testing"
)

func upright() Measurements {
	return Measurements{Confidence: 100}
}

func TestScoreAllClear(t *testing.T) {
	score, status, feedback := Score(upright())

	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if status != StatusExcellent {
		t.Errorf("status = %q, want %q", status, StatusExcellent)
	}
	if !reflect.DeepEqual(feedback, []string{DefaultFeedback}) {
		t.Errorf("feedback = %v, want only the default message", feedback)
	}
}

func TestScoreBandBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Measurements)
		want   int
	}{
		{"confidence at 50", func(m *Measurements) { m.Confidence = 50 }, 100},
		{"confidence below 50", func(m *Measurements) { m.Confidence = 49.9 }, 75},
		{"shoulder just under 5", func(m *Measurements) { m.ShoulderAngle = 4.99 }, 100},
		{"shoulder at 5", func(m *Measurements) { m.ShoulderAngle = 5 }, 90},
		{"shoulder just under 12", func(m *Measurements) { m.ShoulderAngle = 11.99 }, 90},
		{"shoulder at 12", func(m *Measurements) { m.ShoulderAngle = 12 }, 75},
		{"neck just under 10", func(m *Measurements) { m.NeckAngle = 9.99 }, 100},
		{"neck at 10", func(m *Measurements) { m.NeckAngle = 10 }, 85},
		{"neck at 20", func(m *Measurements) { m.NeckAngle = 20 }, 70},
		{"head tilt at 5", func(m *Measurements) { m.HeadTilt = 5 }, 95},
		{"head tilt at 10", func(m *Measurements) { m.HeadTilt = 10 }, 85},
		{"spine just under 8", func(m *Measurements) { m.SpineAngle = 7.99 }, 100},
		{"spine at 8", func(m *Measurements) { m.SpineAngle = 8 }, 90},
		{"spine at 15", func(m *Measurements) { m.SpineAngle = 15 }, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := upright()
			tt.mutate(&m)
			score, _, _ := Score(m)
			if score != tt.want {
				t.Errorf("score = %d, want %d", score, tt.want)
			}
		})
	}
}

func TestScoreSumsThenClamps(t *testing.T) {
	m := Measurements{
		ShoulderAngle: 15,
		NeckAngle:     25,
		HeadTilt:      12,
		SpineAngle:    20,
		Confidence:    40,
	}

	score, status, feedback := Score(m)

	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
	if status != StatusPoor {
		t.Errorf("status = %q, want %q", status, StatusPoor)
	}

	want := []string{
		"Low detection confidence — ensure full upper body is visible.",
		"Uneven shoulders detected — check your seating and straighten up.",
		"Significant forward neck tilt — align your ears directly over your shoulders.",
		"Noticeable head tilt — straighten your head position.",
		"Significant slouching detected — sit tall with your back against the chair.",
	}
	if !reflect.DeepEqual(feedback, want) {
		t.Errorf("feedback = %#v\nwant %#v", feedback, want)
	}
}

func TestScoreFeedbackKeepsEvaluationOrder(t *testing.T) {
	m := upright()
	m.ShoulderAngle = 6
	m.SpineAngle = 30
	m.HeadTilt = 7

	score, status, feedback := Score(m)

	if score != 60 {
		t.Errorf("score = %d, want 60", score)
	}
	if status != StatusNeedsImprovement {
		t.Errorf("status = %q, want %q", status, StatusNeedsImprovement)
	}

	want := []string{
		"Slight shoulder imbalance — try to level both shoulders.",
		"Slight head tilt — keep your head level for a confident look.",
		"Significant slouching detected — sit tall with your back against the chair.",
	}
	if !reflect.DeepEqual(feedback, want) {
		t.Errorf("feedback = %#v\nwant %#v", feedback, want)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		score int
		want  Status
	}{
		{100, StatusExcellent},
		{85, StatusExcellent},
		{84, StatusGood},
		{65, StatusGood},
		{64, StatusNeedsImprovement},
		{45, StatusNeedsImprovement},
		{44, StatusPoor},
		{0, StatusPoor},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.score); got != tt.want {
			t.Errorf("StatusFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreInvariants(t *testing.T) {
	angles := []float64{0, 4.99, 5, 9.99, 10, 12, 15, 19.99, 20, 45, 90, 180}
	confidences := []float64{0, 49.9, 50, 100}

	for _, sh := range angles {
		for _, nk := range angles {
			for _, hd := range angles {
				for _, sp := range angles {
					for _, cf := range confidences {
						m := Measurements{ShoulderAngle: sh, NeckAngle: nk, HeadTilt: hd, SpineAngle: sp, Confidence: cf}
						score, status, feedback := Score(m)
						if score < 0 || score > 100 {
							t.Fatalf("Score(%+v) = %d, out of range", m, score)
						}
						if status != StatusFor(score) {
							t.Fatalf("Score(%+v) status %q does not match score %d", m, status, score)
						}
						if len(feedback) == 0 {
							t.Fatalf("Score(%+v) returned empty feedback", m)
						}
					}
				}
			}
		}
	}
}

func TestRulesTileTheLine(t *testing.T) {
	probes := []float64{-1, 0, 4.999, 5, 7.5, 8, 10, 12, 14.999, 15, 20, 49.99, 50, 1e6}
	for _, rule := range Rules {
		for _, v := range probes {
			hits := 0
			for _, b := range rule.Bands {
				if b.contains(v) {
					hits++
				}
			}
			if hits != 1 {
				t.Errorf("rule %s: value %v falls in %d bands", rule.Signal, v, hits)
			}
		}
	}
}
