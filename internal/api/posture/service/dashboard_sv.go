package postureService

import (
	"PostureIQ/internal/api/posture"
	postureRepository "PostureIQ/internal/api/posture/repository"
	"PostureIQ/internal/entity"
	"context"
	"math"
)

const chartLabelLayout = "2006-01-02 15:04"

func (s *postureService) Dashboard(ctx context.Context, userID string) (posture.DashboardResponse, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return posture.DashboardResponse{}, err
	}

	stats, err := repo.Records.StatsByUser(ctx, userID)
	if err != nil {
		return posture.DashboardResponse{}, err
	}

	records, err := repo.Records.ListByUser(ctx, userID, dashboardRecordLimit)
	if err != nil {
		return posture.DashboardResponse{}, err
	}

	return BuildDashboard(stats, records), nil
}

// BuildDashboard summarises a user's history. records must be newest first.
func BuildDashboard(stats postureRepository.RecordStats, records []entity.PostureRecord) posture.DashboardResponse {
	res := posture.DashboardResponse{
		TotalSessions: stats.Total,
		ChartLabels:   []string{},
		ChartScores:   []int{},
		Records:       make([]posture.RecordResponse, 0, len(records)),
	}

	if stats.Total > 0 {
		res.AvgScore = round1(stats.AvgScore)
	}

	for _, r := range records {
		res.Records = append(res.Records, makeRecordResponse(r))
	}

	if len(res.Records) > 0 {
		latest := res.Records[0]
		res.Latest = &latest

		if stats.Total >= 2 && stats.FirstScore > 0 {
			first := float64(stats.FirstScore)
			res.Improvement = round1((float64(latest.PostureScore) - first) / first * 100)
		}
	}

	n := min(chartPoints, len(records))
	for i := n - 1; i >= 0; i-- {
		res.ChartLabels = append(res.ChartLabels, records[i].CreatedAt.UTC().Format(chartLabelLayout))
		res.ChartScores = append(res.ChartScores, records[i].PostureScore)
	}

	return res
}

func makeRecordResponse(r entity.PostureRecord) posture.RecordResponse {
	feedback := r.Feedback
	if feedback == nil {
		feedback = []string{}
	}

	return posture.RecordResponse{
		ID:            r.ID,
		Source:        string(r.Source),
		ShoulderAngle: r.ShoulderAngle,
		NeckAngle:     r.NeckAngle,
		HeadTilt:      r.HeadTilt,
		SpineAngle:    r.SpineAngle,
		PostureScore:  r.PostureScore,
		PostureStatus: r.PostureStatus,
		Feedback:      feedback,
		Confidence:    r.Confidence,
		HasSnapshot:   r.SnapshotKey != "",
		CreatedAt:     r.CreatedAt,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
