package postureService

import (
	"PostureIQ/internal/api/posture"
	contextPkg "PostureIQ/pkg/context"
	"PostureIQ/pkg/response"
	"context"

	"github.com/sirupsen/logrus"
)

const snapshotURLMinutes = 15

func (s *postureService) SnapshotURL(ctx context.Context, userID string, recordID string) (posture.SnapshotResponse, error) {
	if s.s3Client == nil {
		return posture.SnapshotResponse{}, posture.ErrSnapshotNotFound
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return posture.SnapshotResponse{}, err
	}

	record, err := repo.Records.GetByIDForUser(ctx, recordID, userID)
	if err != nil {
		return posture.SnapshotResponse{}, err
	}

	if record.SnapshotKey == "" {
		return posture.SnapshotResponse{}, posture.ErrSnapshotNotFound
	}

	url, err := s.s3Client.PresignUrl(record.SnapshotKey)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"record_id":  recordID,
			"error":      err.Error(),
		}).Warn("Failed to presign snapshot")
		return posture.SnapshotResponse{}, response.Wrap(posture.ErrSnapshotNotFound, err)
	}

	return posture.SnapshotResponse{
		URL:              url,
		ExpiresInMinutes: snapshotURLMinutes,
	}, nil
}
