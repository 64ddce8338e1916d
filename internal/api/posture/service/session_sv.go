package postureService

import (
	"PostureIQ/internal/api/posture"
	"PostureIQ/internal/entity"
	"PostureIQ/pkg/analyzer"
	contextPkg "PostureIQ/pkg/context"
	"context"

	"github.com/sirupsen/logrus"
)

func (s *postureService) SaveMockSession(ctx context.Context, userID string, scores []float64) (posture.MockSessionResponse, error) {
	summary, err := analyzer.AggregateSession(scores)
	if err != nil {
		return posture.MockSessionResponse{}, posture.ErrInvalidScores
	}

	now := s.now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return posture.MockSessionResponse{}, err
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return posture.MockSessionResponse{}, err
	}

	err = repo.Records.CreateRecord(ctx, entity.PostureRecord{
		ID:            id,
		UserID:        userID,
		Source:        entity.SourceMockSession,
		PostureScore:  summary.AvgScore,
		PostureStatus: string(summary.Status),
		Feedback:      []string{summary.Feedback},
		Confidence:    summary.Confidence,
		CreatedAt:     now,
	})
	if err != nil {
		return posture.MockSessionResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"record_id":  id,
		"samples":    summary.Samples,
		"avg_score":  summary.AvgScore,
	}).Info("Mock session saved")

	return posture.MockSessionResponse{
		AvgScore: summary.AvgScore,
		Status:   string(summary.Status),
	}, nil
}
