// Package analyzer turns a webcam frame into a deterministic posture score.
//
// Decoding and pose estimation are delegated to an ImageDecoder and a
// PoseEstimator. Everything after the landmark set is pure.
package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDecodeImage      = errors.New("could not decode image")
	ErrNoPersonDetected = errors.New("no person detected")
)

// AnalysisError wraps an unexpected failure inside the pipeline.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis error: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Frame is a decoded image ready for the pose model. Data is the encoded
// (JPEG) form of the resized pixels.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

type ImageDecoder interface {
	DecodeFrame(data []byte) (Frame, error)
}

// PoseEstimator returns the landmarks of the most prominent person in the
// frame, or an empty set when nobody is in view.
type PoseEstimator interface {
	EstimatePose(ctx context.Context, frame Frame) ([]Landmark, error)
}

type PostureResult struct {
	ShoulderAngle float64  `json:"shoulder_angle"`
	NeckAngle     float64  `json:"neck_angle"`
	HeadTilt      float64  `json:"head_tilt"`
	SpineAngle    float64  `json:"spine_angle"`
	Confidence    float64  `json:"confidence"`
	PostureScore  int      `json:"posture_score"`
	PostureStatus Status   `json:"posture_status"`
	Feedback      []string `json:"feedback"`
}

// Evaluate computes the posture result for a landmark set measured on an
// image of the given dimensions.
func Evaluate(set LandmarkSet, width, height int) (PostureResult, error) {
	s, err := extractSkeleton(set, width, height)
	if err != nil {
		return PostureResult{}, err
	}

	m := Measurements{
		ShoulderAngle: SlopeAngle(s.leftShoulder, s.rightShoulder),
		NeckAngle:     AngleFromVertical(s.midShoulder, s.midEar),
		HeadTilt:      SlopeAngle(s.leftEar, s.rightEar),
		SpineAngle:    AngleFromVertical(s.midHip, s.midShoulder),
		Confidence:    Confidence(set),
	}

	score, status, feedback := Score(m)

	return PostureResult{
		ShoulderAngle: round(m.ShoulderAngle, 2),
		NeckAngle:     round(m.NeckAngle, 2),
		HeadTilt:      round(m.HeadTilt, 2),
		SpineAngle:    round(m.SpineAngle, 2),
		Confidence:    m.Confidence,
		PostureScore:  score,
		PostureStatus: status,
		Feedback:      feedback,
	}, nil
}

type Analyzer struct {
	decoder   ImageDecoder
	estimator PoseEstimator
}

func New(decoder ImageDecoder, estimator PoseEstimator) *Analyzer {
	return &Analyzer{
		decoder:   decoder,
		estimator: estimator,
	}
}

// Analysis is a successful run: the result and the frame it was measured on.
type Analysis struct {
	Result PostureResult
	Frame  Frame
}

// AnalyzeBase64 accepts a base64 image, optionally prefixed as a data URI.
func (a *Analyzer) AnalyzeBase64(ctx context.Context, encoded string) (Analysis, error) {
	raw, err := DecodeBase64Image(encoded)
	if err != nil {
		return Analysis{}, err
	}
	return a.Analyze(ctx, raw)
}

// Analyze runs decode, pose estimation and scoring. The returned error is
// exactly one of ErrDecodeImage, ErrNoPersonDetected or *AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, image []byte) (analysis Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			analysis = Analysis{}
			err = &AnalysisError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	frame, err := a.decoder.DecodeFrame(image)
	if err != nil {
		if errors.Is(err, ErrDecodeImage) {
			return Analysis{}, err
		}
		return Analysis{}, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	points, err := a.estimator.EstimatePose(ctx, frame)
	if err != nil {
		if errors.Is(err, ErrNoPersonDetected) {
			return Analysis{}, ErrNoPersonDetected
		}
		return Analysis{}, &AnalysisError{Err: err}
	}

	result, err := Evaluate(NewLandmarkSet(points), frame.Width, frame.Height)
	if err != nil {
		if errors.Is(err, ErrNoPersonDetected) {
			return Analysis{}, ErrNoPersonDetected
		}
		return Analysis{}, &AnalysisError{Err: err}
	}

	return Analysis{Result: result, Frame: frame}, nil
}

// DecodeBase64Image strips an optional "data:...;base64," prefix and decodes
// the payload. Malformed input is reported as ErrDecodeImage.
func DecodeBase64Image(encoded string) ([]byte, error) {
	if i := strings.Index(encoded, ","); i >= 0 {
		encoded = encoded[i+1:]
	}
	encoded = strings.TrimSpace(encoded)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
		}
	}
	if len(raw) == 0 {
		return nil, ErrDecodeImage
	}
	return raw, nil
}
