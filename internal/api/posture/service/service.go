package postureService

import (
	"PostureIQ/internal/api/posture"
	postureRepository "PostureIQ/internal/api/posture/repository"
	"PostureIQ/internal/entity"
	"PostureIQ/pkg/analyzer"
	"PostureIQ/pkg/ratelimit"
	"PostureIQ/pkg/s3"
	"PostureIQ/pkg/utils"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dashboardRecordLimit = 500
	chartPoints          = 10
)

type PostureService interface {
	DetectBase64(ctx context.Context, userID string, encoded string) (analyzer.PostureResult, error)
	DetectImage(ctx context.Context, userID string, image []byte) (analyzer.PostureResult, error)
	AnalyzeFrame(ctx context.Context, userID string, image []byte) (analyzer.PostureResult, error)
	SaveMockSession(ctx context.Context, userID string, scores []float64) (posture.MockSessionResponse, error)
	Dashboard(ctx context.Context, userID string) (posture.DashboardResponse, error)
	Report(ctx context.Context, user entity.UserLoginData, recordID string) (posture.Report, error)
	SnapshotURL(ctx context.Context, userID string, recordID string) (posture.SnapshotResponse, error)
}

type PostureAnalyzer interface {
	Analyze(ctx context.Context, image []byte) (analyzer.Analysis, error)
}

type postureService struct {
	log       *logrus.Logger
	repo      postureRepository.Repository
	analyzer  PostureAnalyzer
	limiter   ratelimit.Limiter
	s3Client  s3.ItfS3
	utils     utils.IUtils
	snapshots bool
	now       func() time.Time
}

type Option func(*postureService)

// WithSnapshots uploads the analyzed frame of each saved detection.
func WithSnapshots(client s3.ItfS3) Option {
	return func(s *postureService) {
		s.s3Client = client
		s.snapshots = client != nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *postureService) {
		s.now = now
	}
}

func NewPostureService(
	log *logrus.Logger,
	repo postureRepository.Repository,
	postureAnalyzer PostureAnalyzer,
	limiter ratelimit.Limiter,
	utils utils.IUtils,
	opts ...Option,
) PostureService {
	s := &postureService{
		log:      log,
		repo:     repo,
		analyzer: postureAnalyzer,
		limiter:  limiter,
		utils:    utils,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
