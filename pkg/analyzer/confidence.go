package analyzer

// confidenceWeights favours torso landmarks, which are steadier under
// webcam framing than facial ones.
var confidenceWeights = []struct {
	name   LandmarkName
	weight int
}{
	{LeftShoulder, 2},
	{RightShoulder, 2},
	{LeftHip, 2},
	{RightHip, 2},
	{LeftEar, 1},
	{RightEar, 1},
	{Nose, 1},
}

// Confidence is the weighted mean visibility of the scoring landmarks as a
// percentage with one decimal. Missing landmarks contribute zero visibility.
func Confidence(set LandmarkSet) float64 {
	var total, sum float64
	for _, w := range confidenceWeights {
		total += float64(w.weight)
		sum += set[w.name].Visibility * float64(w.weight)
	}
	if total == 0 {
		return 0
	}
	return round(sum/total*100, 1)
}
