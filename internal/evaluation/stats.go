package evaluation

import "math"

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance is the sample variance (n-1 denominator), matching how
// repeat-run spread is reported.
func calculateVariance(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mean := calculateMean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values)-1)
}

func calculateStdDev(values []float64) float64 {
	return math.Sqrt(calculateVariance(values))
}
