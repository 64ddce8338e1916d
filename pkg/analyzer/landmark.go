package analyzer

import "fmt"

// LandmarkName identifies a body point by its index in the 33-point
// MediaPipe pose topology returned by the pose service.
type LandmarkName int

const (
	Nose          LandmarkName = 0
	LeftEar       LandmarkName = 7
	RightEar      LandmarkName = 8
	LeftShoulder  LandmarkName = 11
	RightShoulder LandmarkName = 12
	LeftHip       LandmarkName = 23
	RightHip      LandmarkName = 24
)

var landmarkNames = map[LandmarkName]string{
	Nose:          "nose",
	LeftEar:       "left_ear",
	RightEar:      "right_ear",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
}

func (n LandmarkName) String() string {
	if s, ok := landmarkNames[n]; ok {
		return s
	}
	return fmt.Sprintf("landmark_%d", int(n))
}

// Landmark holds normalized image coordinates in [0,1] and the model's
// visibility score in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// LandmarkSet is one detected pose keyed by landmark index.
type LandmarkSet map[LandmarkName]Landmark

// NewLandmarkSet indexes a landmark slice in model order.
func NewLandmarkSet(points []Landmark) LandmarkSet {
	set := make(LandmarkSet, len(points))
	for i, p := range points {
		set[LandmarkName(i)] = p
	}
	return set
}

type skeleton struct {
	nose          Point
	leftEar       Point
	rightEar      Point
	leftShoulder  Point
	rightShoulder Point
	leftHip       Point
	rightHip      Point
	midShoulder   Point
	midHip        Point
	midEar        Point
}

// extractSkeleton scales the landmarks used for scoring into pixel space.
// A set lacking any of them cannot be measured and counts as no person.
func extractSkeleton(set LandmarkSet, width, height int) (skeleton, error) {
	if len(set) == 0 {
		return skeleton{}, ErrNoPersonDetected
	}

	w, h := float64(width), float64(height)
	pt := func(name LandmarkName) (Point, error) {
		lm, ok := set[name]
		if !ok {
			return Point{}, fmt.Errorf("%w: missing %s", ErrNoPersonDetected, name)
		}
		return Point{X: lm.X * w, Y: lm.Y * h}, nil
	}

	var s skeleton
	targets := []struct {
		name LandmarkName
		dst  *Point
	}{
		{Nose, &s.nose},
		{LeftEar, &s.leftEar},
		{RightEar, &s.rightEar},
		{LeftShoulder, &s.leftShoulder},
		{RightShoulder, &s.rightShoulder},
		{LeftHip, &s.leftHip},
		{RightHip, &s.rightHip},
	}
	for _, t := range targets {
		p, err := pt(t.name)
		if err != nil {
			return skeleton{}, err
		}
		*t.dst = p
	}

	s.midShoulder = midpoint(s.leftShoulder, s.rightShoulder)
	s.midHip = midpoint(s.leftHip, s.rightHip)
	s.midEar = midpoint(s.leftEar, s.rightEar)

	return s, nil
}
