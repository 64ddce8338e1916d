package postureService

import (
	"PostureIQ/internal/api/posture"
	postureRepository "PostureIQ/internal/api/posture/repository"
	"PostureIQ/internal/entity"
	"PostureIQ/pkg/analyzer"
	contextPkg "PostureIQ/pkg/context"
	"PostureIQ/pkg/response"
	"PostureIQ/pkg/s3"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const snapshotTimeout = 10 * time.Second

func (s *postureService) DetectBase64(ctx context.Context, userID string, encoded string) (analyzer.PostureResult, error) {
	if err := s.allow(ctx, userID); err != nil {
		return analyzer.PostureResult{}, err
	}

	if strings.TrimSpace(encoded) == "" {
		return analyzer.PostureResult{}, posture.ErrNoImage
	}

	raw, err := analyzer.DecodeBase64Image(encoded)
	if err != nil {
		return analyzer.PostureResult{}, posture.ErrImageDecode
	}

	return s.detect(ctx, userID, raw)
}

func (s *postureService) DetectImage(ctx context.Context, userID string, image []byte) (analyzer.PostureResult, error) {
	if err := s.allow(ctx, userID); err != nil {
		return analyzer.PostureResult{}, err
	}

	if len(image) == 0 {
		return analyzer.PostureResult{}, posture.ErrNoImage
	}

	return s.detect(ctx, userID, image)
}

// AnalyzeFrame scores one live-stream frame without storing it.
func (s *postureService) AnalyzeFrame(ctx context.Context, userID string, image []byte) (analyzer.PostureResult, error) {
	if err := s.allow(ctx, userID); err != nil {
		return analyzer.PostureResult{}, err
	}

	if len(image) == 0 {
		return analyzer.PostureResult{}, posture.ErrNoImage
	}

	analysis, err := s.analyzer.Analyze(ctx, image)
	if err != nil {
		return analyzer.PostureResult{}, s.mapAnalysisError(ctx, err)
	}

	return analysis.Result, nil
}

func (s *postureService) detect(ctx context.Context, userID string, image []byte) (analyzer.PostureResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	analysis, err := s.analyzer.Analyze(ctx, image)
	if err != nil {
		return analyzer.PostureResult{}, s.mapAnalysisError(ctx, err)
	}
	result := analysis.Result

	now := s.now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return analyzer.PostureResult{}, err
	}

	record := entity.PostureRecord{
		ID:            id,
		UserID:        userID,
		Source:        entity.SourceDetection,
		ShoulderAngle: &result.ShoulderAngle,
		NeckAngle:     &result.NeckAngle,
		HeadTilt:      &result.HeadTilt,
		SpineAngle:    &result.SpineAngle,
		PostureScore:  result.PostureScore,
		PostureStatus: string(result.PostureStatus),
		Feedback:      result.Feedback,
		Confidence:    result.Confidence,
		CreatedAt:     now,
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return analyzer.PostureResult{}, err
	}

	if err := repo.Records.CreateRecord(ctx, record); err != nil {
		return analyzer.PostureResult{}, err
	}

	if s.snapshots {
		snapshotCtx, cancel := contextPkg.Detach(ctx, snapshotTimeout)
		s.storeSnapshot(snapshotCtx, repo.Records, record, analysis.Frame)
		cancel()
	}

	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"record_id":     record.ID,
		"posture_score": result.PostureScore,
		"confidence":    result.Confidence,
	}).Info("Posture detection saved")

	return result, nil
}

// storeSnapshot never fails the detection; a lost snapshot is only logged.
func (s *postureService) storeSnapshot(ctx context.Context, records postureRepository.RecordStore, record entity.PostureRecord, frame analyzer.Frame) {
	requestID := contextPkg.GetRequestID(ctx)
	key := s3.SnapshotKey(record.UserID, record.ID)

	if err := s.s3Client.UploadObject(ctx, key, frame.Data, "image/jpeg"); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  record.ID,
			"error":      err.Error(),
		}).Warn("Failed to upload posture snapshot")
		return
	}

	if err := records.SetSnapshotKey(ctx, record.ID, record.UserID, key); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  record.ID,
			"error":      err.Error(),
		}).Warn("Failed to attach snapshot to record")
	}
}

func (s *postureService) allow(ctx context.Context, userID string) error {
	ok, err := s.limiter.Allow(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
		}).Warn("Detection rate limit exceeded")
		return posture.ErrRateLimitExceeded
	}
	return nil
}

func (s *postureService) mapAnalysisError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, analyzer.ErrDecodeImage):
		return posture.ErrImageDecode
	case errors.Is(err, analyzer.ErrNoPersonDetected):
		return posture.ErrNoPersonDetected
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	default:
		return response.Wrap(posture.ErrAnalysis, err)
	}
}
