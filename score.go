package qbench

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

/*
Accuracy scores a reconstruction against its original. The pipeline's
invert step complements every pixel, so the expected reconstruction of
original[i] is values.Hi - original[i]. Each element contributes

	1 - |reconstructed - expected| / max(expected, reconstructed)

with the error rounded to four decimals to suppress floating point noise,
and defined as zero when the two values match exactly. The score is the
arithmetic mean over all elements, in [0, 1].
*/
func Accuracy(original, reconstructed []int, values Range) (float64, error) {
	if len(original) != len(reconstructed) {
		return 0, fmt.Errorf("%w: original %d, reconstructed %d",
			ErrDimensionMismatch, len(original), len(reconstructed))
	}

	scores := make([]float64, len(original))
	for i := range original {
		expected := int(values.Hi) - original[i]
		if expected == reconstructed[i] {
			scores[i] = 1
			continue
		}
		denom := float64(max(expected, reconstructed[i]))
		err := math.Abs(float64(reconstructed[i]-expected)) / denom
		scores[i] = 1 - round4(err)
	}
	return stat.Mean(scores, nil), nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
