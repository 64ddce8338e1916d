package posture

import (
	"PostureIQ/pkg/response"
	"net/http"
)

var (
	ErrImageDecode       = response.NewError(http.StatusBadRequest, "Could not decode image. Please try again.")
	ErrNoPersonDetected  = response.NewError(http.StatusBadRequest, "No person detected. Please ensure your full upper body is visible and the room is well lit.")
	ErrNoImage           = response.NewError(http.StatusBadRequest, "No image data provided.")
	ErrInvalidImageFile  = response.NewError(http.StatusBadRequest, "Invalid file type. Only images are allowed.")
	ErrImageTooLarge     = response.NewError(http.StatusBadRequest, "File too large. Maximum size is 5MB.")
	ErrInvalidScores     = response.NewError(http.StatusBadRequest, "No scores provided.")
	ErrRateLimitExceeded = response.NewError(http.StatusTooManyRequests, "Rate limit exceeded. Please wait a moment.")
	ErrRecordNotFound    = response.NewError(http.StatusNotFound, "Report not found.")
	ErrSnapshotNotFound  = response.NewError(http.StatusNotFound, "Snapshot not found.")
	ErrAnalysis          = response.NewError(http.StatusInternalServerError, "analysis error")
)
