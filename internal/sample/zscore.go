package sample

import "math"

// zTable holds Z-scores for the common confidence levels.
var zTable = map[float64]float64{
	0.90:  1.645,
	0.95:  1.960,
	0.99:  2.576,
	0.999: 3.291,
}

// zScore returns the two-sided Z-score for a confidence level. Levels
// outside the lookup table use the inverse standard-normal CDF.
func zScore(confidence float64) float64 {
	if z, ok := zTable[confidence]; ok {
		return z
	}
	q := 1 - (1-confidence)/2
	return math.Sqrt2 * math.Erfinv(2*q-1)
}
