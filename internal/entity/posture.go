package entity

import "time"

type RecordSource string

const (
	SourceDetection   RecordSource = "detection"
	SourceMockSession RecordSource = "mock_session"
)

// PostureRecord is written once and never updated. Angles are nil for
// mock-session records.
type PostureRecord struct {
	ID            string
	UserID        string
	Source        RecordSource
	ShoulderAngle *float64
	NeckAngle     *float64
	HeadTilt      *float64
	SpineAngle    *float64
	PostureScore  int
	PostureStatus string
	Feedback      []string
	Confidence    float64
	SnapshotKey   string
	CreatedAt     time.Time
}
