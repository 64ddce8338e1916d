package postureService

import (
	"PostureIQ/internal/api/posture"
	"PostureIQ/internal/entity"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const scoringReference = `SCORING REFERENCE
─────────────────
85–100  Excellent        All angles within ideal thresholds
65–84   Good             Minor deviations, acceptable overall
45–64   Needs Improvement  One or more significant deviations
0–44    Poor             Multiple posture issues detected`

func (s *postureService) Report(ctx context.Context, user entity.UserLoginData, recordID string) (posture.Report, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return posture.Report{}, err
	}

	record, err := repo.Records.GetByIDForUser(ctx, recordID, user.ID)
	if err != nil {
		return posture.Report{}, err
	}

	return posture.Report{
		FileName: fmt.Sprintf("postureiq-report-%s.txt", record.ID),
		Body:     RenderReport(user.Username, record, s.now()),
	}, nil
}

// RenderReport lays out a record as the downloadable plain-text report.
func RenderReport(username string, record entity.PostureRecord, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("POSTUREIQ — SESSION REPORT\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "User       : %s\n", username)
	fmt.Fprintf(&b, "Date       : %s\n", record.CreatedAt.UTC().Format(time.DateTime))
	fmt.Fprintf(&b, "Session ID : %s\n", record.ID)
	b.WriteString("\n")

	b.WriteString("POSTURE SCORE\n")
	b.WriteString("─────────────\n")
	fmt.Fprintf(&b, "Score      : %d / 100\n", record.PostureScore)
	fmt.Fprintf(&b, "Status     : %s\n", record.PostureStatus)
	fmt.Fprintf(&b, "Confidence : %s%%\n", formatNumber(record.Confidence))
	b.WriteString("\n")

	b.WriteString("ANGLE MEASUREMENTS\n")
	b.WriteString("──────────────────\n")
	fmt.Fprintf(&b, "Shoulder Slope  : %s\n", formatAngle(record.ShoulderAngle))
	fmt.Fprintf(&b, "Neck Tilt       : %s\n", formatAngle(record.NeckAngle))
	fmt.Fprintf(&b, "Head Tilt       : %s\n", formatAngle(record.HeadTilt))
	fmt.Fprintf(&b, "Spine Angle     : %s\n", formatAngle(record.SpineAngle))
	b.WriteString("\n")

	b.WriteString("FEEDBACK\n")
	b.WriteString("────────\n")
	for _, line := range record.Feedback {
		if line = strings.TrimSpace(line); line != "" {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(scoringReference + "\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Generated by PostureIQ · %s", generatedAt.UTC().Format("2006-01-02 15:04"))

	return b.String()
}

func formatAngle(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatNumber(*v) + "°"
}

// formatNumber prints whole values with one decimal (100.0) and others in
// their shortest form (12.25).
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
