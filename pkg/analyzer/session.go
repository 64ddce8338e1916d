package analyzer

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidScores = errors.New("invalid session scores")

// SessionSummary condenses the samples of a timed session into one result.
type SessionSummary struct {
	Samples    int
	AvgScore   int
	Status     Status
	Confidence float64
	Feedback   string
}

// AggregateSession averages per-sample scores. The mean is rounded half to
// even and every sample must lie in [0, 100].
func AggregateSession(scores []float64) (SessionSummary, error) {
	if len(scores) == 0 {
		return SessionSummary{}, fmt.Errorf("%w: no scores", ErrInvalidScores)
	}

	var sum float64
	for i, s := range scores {
		if math.IsNaN(s) || s < 0 || s > 100 {
			return SessionSummary{}, fmt.Errorf("%w: score %d out of range", ErrInvalidScores, i)
		}
		sum += s
	}

	avg := int(math.RoundToEven(sum / float64(len(scores))))

	return SessionSummary{
		Samples:    len(scores),
		AvgScore:   avg,
		Status:     StatusFor(avg),
		Confidence: 100,
		Feedback:   fmt.Sprintf("Mock interview session · %d samples · avg score %d", len(scores), avg),
	}, nil
}
