package posture

import (
	"PostureIQ/pkg/analyzer"
	"time"
)

type DetectRequest struct {
	Image string `json:"image"`
}

type DetectResponse = analyzer.PostureResult

type MockSessionRequest struct {
	Scores []float64 `json:"scores" validate:"required,min=1,max=3600,dive,gte=0,lte=100"`
}

type MockSessionResponse struct {
	AvgScore int    `json:"avg_score"`
	Status   string `json:"status"`
}

type RecordResponse struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	ShoulderAngle *float64  `json:"shoulder_angle"`
	NeckAngle     *float64  `json:"neck_angle"`
	HeadTilt      *float64  `json:"head_tilt"`
	SpineAngle    *float64  `json:"spine_angle"`
	PostureScore  int       `json:"posture_score"`
	PostureStatus string    `json:"posture_status"`
	Feedback      []string  `json:"feedback"`
	Confidence    float64   `json:"confidence"`
	HasSnapshot   bool      `json:"has_snapshot"`
	CreatedAt     time.Time `json:"created_at"`
}

type DashboardResponse struct {
	TotalSessions int              `json:"total_sessions"`
	AvgScore      float64          `json:"avg_score"`
	Latest        *RecordResponse  `json:"latest"`
	Improvement   float64          `json:"improvement"`
	ChartLabels   []string         `json:"chart_labels"`
	ChartScores   []int            `json:"chart_scores"`
	Records       []RecordResponse `json:"records"`
}

type Report struct {
	FileName string
	Body     string
}

type SnapshotResponse struct {
	URL              string `json:"url"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}
