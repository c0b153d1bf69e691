package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

const robustIterations = 3

// Lowess fits a locally weighted linear regression through the values,
// using a neighbourhood spanning windowDays of the data's date range.
// ok is false when the window is not positive or wider than the range.
//
// Fits are keyed by whole day offsets from the first observation.
// Observations that fall between whole days are filled by linear
// interpolation.
func Lowess(values []float64, times []time.Time, windowDays float64) (Series, bool, error) {
	if err := checkAligned(values, times); err != nil {
		return Series{}, false, err
	}
	if len(values) == 0 {
		return Series{}, false, fmt.Errorf("%w: no observations", ErrPrecondition)
	}

	day := make([]float64, len(times))
	for i, t := range times {
		day[i] = t.Sub(times[0]).Hours()/24 + 1
	}

	frac := windowDays / day[len(day)-1]
	if frac <= 0 || frac > 1 {
		return Series{}, false, nil
	}

	fitted := lowess(day, values, frac, robustIterations)

	byDay := make(map[int]float64, len(fitted))
	for i, x := range day {
		byDay[int(x)] = fitted[i]
	}

	mapped := make([]float64, len(day))
	for i, x := range day {
		mapped[i] = math.NaN()
		if x == math.Trunc(x) {
			if v, ok := byDay[int(x)]; ok {
				mapped[i] = v
			}
		}
	}

	return Series{
		Index:  append([]time.Time(nil), times...),
		Values: interpolate(mapped),
	}, true, nil
}

// lowess is Cleveland's robust locally weighted regression for sorted x.
func lowess(x, y []float64, frac float64, iterations int) []float64 {
	n := len(x)
	k := int(frac*float64(n) + 1e-10)
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	fit := make([]float64, n)
	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}

	var yScale float64
	for _, v := range y {
		yScale += math.Abs(v)
	}
	yScale /= float64(n)

	weights := make([]float64, n)
	for iter := 0; iter <= iterations; iter++ {
		left := 0
		for i := 0; i < n; i++ {
			// slide the k-point window so it stays centred on x[i]
			for left+k < n && x[i]-x[left] > x[left+k]-x[i] {
				left++
			}
			right := left + k - 1

			h := math.Max(x[i]-x[left], x[right]-x[i])
			fit[i] = localFit(x, y, i, left, right, h, robust, weights)
		}

		if iter == iterations {
			break
		}

		residuals := make([]float64, n)
		for i := range residuals {
			residuals[i] = math.Abs(y[i] - fit[i])
		}
		// residuals this small are rounding noise
		scale := 6 * median(residuals)
		if scale <= 1e-7*yScale {
			break
		}
		for i, r := range residuals {
			switch {
			case r <= 0.001*scale:
				robust[i] = 1
			case r > 0.999*scale:
				robust[i] = 0
			default:
				u := r / scale
				robust[i] = (1 - u*u) * (1 - u*u)
			}
		}
	}

	return fit
}

func localFit(x, y []float64, i, left, right int, h float64, robust, weights []float64) float64 {
	var (
		total      float64
		minX, maxX = math.Inf(1), math.Inf(-1)
	)
	xs := x[left : right+1]
	ys := y[left : right+1]
	w := weights[:len(xs)]

	for j := range xs {
		d := math.Abs(xs[j] - x[i])
		switch {
		case h == 0 || d <= 0.001*h:
			w[j] = 1
		case d <= 0.999*h:
			r := d / h
			c := 1 - r*r*r
			w[j] = c * c * c
		default:
			w[j] = 0
		}
		w[j] *= robust[left+j]
		if w[j] > 0 {
			total += w[j]
			minX = math.Min(minX, xs[j])
			maxX = math.Max(maxX, xs[j])
		}
	}

	if total <= 0 {
		return y[i]
	}
	if maxX-minX < 1e-12 {
		return stat.Mean(ys, w)
	}

	alpha, beta := stat.LinearRegression(xs, ys, w, false)
	return alpha + beta*x[i]
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// interpolate fills NaN gaps linearly by position. Leading NaNs stay,
// trailing NaNs take the last known value.
func interpolate(v []float64) []float64 {
	out := append([]float64(nil), v...)
	prev := -1
	for i, val := range out {
		if math.IsNaN(val) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (val - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < len(out); j++ {
			out[j] = out[prev]
		}
	}
	return out
}
