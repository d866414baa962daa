// Package binning implements the Savitzky-Golay smoothing ladder
// shared by the RPM binner and the sensor power engine, plus the
// RPM-bin aggregation itself.
package binning

// sg5, sg7, sg9 are the canonical quadratic Savitzky-Golay coefficient
// tables for convolution lengths 5, 7, and 9.
var (
	sg5 = sgTable([]float64{-3, 12, 17, 12, -3}, 35)
	sg7 = sgTable([]float64{-2, 3, 6, 7, 6, 3, -2}, 21)
	sg9 = sgTable([]float64{-21, 14, 39, 54, 59, 54, 39, 14, -21}, 231)
)

func sgTable(coeffs []float64, norm float64) []float64 {
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = c / norm
	}
	return out
}

// clampIndex implements the boundary policy: reflection-by-clamping,
// i.e. out-of-range indices are clamped to [0, n-1].
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// convolve applies a centered convolution with the given coefficients,
// clamping out-of-range sample indices to the array boundary. Arrays
// shorter than 3 samples are returned unchanged.
func convolve(data []float64, coeffs []float64) []float64 {
	n := len(data)
	if n < 3 {
		return append([]float64(nil), data...)
	}

	half := len(coeffs) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for k, c := range coeffs {
			idx := clampIndex(i+k-half, n)
			sum += c * data[idx]
		}
		out[i] = sum
	}
	return out
}

// movingAverage applies a centered window-sample moving average with
// the same clamp-to-boundary policy.
func movingAverage(data []float64, window int) []float64 {
	n := len(data)
	if n < 3 {
		return append([]float64(nil), data...)
	}

	half := window / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for k := -half; k <= half; k++ {
			sum += data[clampIndex(i+k, n)]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// SavitzkyGolay5/7/9 apply one convolution pass at the given length.
func SavitzkyGolay5(data []float64) []float64 { return convolve(data, sg5) }
func SavitzkyGolay7(data []float64) []float64 { return convolve(data, sg7) }
func SavitzkyGolay9(data []float64) []float64 { return convolve(data, sg9) }

// MovingAverage5 applies a 5-sample centered moving average pass.
func MovingAverage5(data []float64) []float64 { return movingAverage(data, 5) }

// Ladder applies the filter-level ladder: no smoothing at L<=0,
// SG5/7/9 by level, and an extra 5-sample moving-average pass above
// L=75.
func Ladder(data []float64, filterLevel float64) []float64 {
	switch {
	case filterLevel <= 0:
		return append([]float64(nil), data...)
	case filterLevel <= 25:
		return SavitzkyGolay5(data)
	case filterLevel <= 50:
		return SavitzkyGolay7(data)
	case filterLevel <= 75:
		return SavitzkyGolay9(data)
	default:
		return MovingAverage5(SavitzkyGolay9(data))
	}
}

// SensorLadder applies the sensor-path variant: the same base SG
// ladder as Ladder, but the extra pass above filter level 80 is a
// second SG5 pass rather than a moving average.
func SensorLadder(data []float64, filterLevel float64) []float64 {
	switch {
	case filterLevel <= 0:
		return append([]float64(nil), data...)
	case filterLevel <= 25:
		return SavitzkyGolay5(data)
	case filterLevel <= 50:
		return SavitzkyGolay7(data)
	case filterLevel <= 80:
		return SavitzkyGolay9(data)
	default:
		return SavitzkyGolay5(SavitzkyGolay9(data))
	}
}

// DefaultSensorFilterLevel is the filter level used when the caller
// does not specify one.
const DefaultSensorFilterLevel = 50.0
