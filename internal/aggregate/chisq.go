package aggregate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

type Verdict int

const (
	UnderDispersed Verdict = iota
	WithinNoise
	OverDispersed
	// Indeterminate is reported when the statistic is not a number.
	Indeterminate
)

func (v Verdict) String() string {
	switch v {
	case UnderDispersed:
		return "under-dispersed"
	case WithinNoise:
		return "within sampling noise"
	case OverDispersed:
		return "over-dispersed"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// ChiSquared is the outcome of a dispersion test of poll results
// against the spread expected from sampling error alone.
type ChiSquared struct {
	Statistic        float64
	Lower            float64
	Upper            float64
	DegreesOfFreedom int
	Percent          float64
}

func (c ChiSquared) Verdict() Verdict {
	switch {
	case math.IsNaN(c.Statistic):
		return Indeterminate
	case c.Statistic < c.Lower:
		return UnderDispersed
	case c.Statistic > c.Upper:
		return OverDispersed
	default:
		return WithinNoise
	}
}

func (c ChiSquared) String() string {
	return fmt.Sprintf("χ²=%.2f, %g%% between %.2f and %.2f (dof %d): %s",
		c.Statistic, c.Percent, c.Lower, c.Upper, c.DegreesOfFreedom, c.Verdict())
}

// ChiSquaredTest compares the spread of percentage values with the
// spread expected from their sample sizes. When mean is nil the mean
// of values is used.
func ChiSquaredTest(values, sampleSizes []float64, percent float64, mean *float64) (ChiSquared, error) {
	if percent < 50 || percent > 100 {
		return ChiSquared{}, fmt.Errorf("%w: percent must be within [50, 100], got %g", ErrPrecondition, percent)
	}
	if len(values) != len(sampleSizes) {
		return ChiSquared{}, fmt.Errorf("%w: %d values but %d sample sizes", ErrPrecondition, len(values), len(sampleSizes))
	}
	if len(values) < 2 {
		return ChiSquared{}, fmt.Errorf("%w: need at least 2 observations, got %d", ErrPrecondition, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return ChiSquared{}, fmt.Errorf("%w: value %d (%g) is not a percentage", ErrPrecondition, i, v)
		}
		if math.IsNaN(sampleSizes[i]) || sampleSizes[i] <= 0 {
			return ChiSquared{}, fmt.Errorf("%w: sample size %d (%g) must be positive", ErrPrecondition, i, sampleSizes[i])
		}
	}

	m := stat.Mean(values, nil)
	if mean != nil {
		if math.IsNaN(*mean) {
			return ChiSquared{}, fmt.Errorf("%w: mean is NaN", ErrPrecondition)
		}
		m = *mean
	}

	var x float64
	for i, v := range values {
		sd := math.Sqrt(v * (100 - v) / sampleSizes[i])
		if sd == 0 && v == m {
			// 0 or 100 per cent on the mean: no deviation to weigh
			continue
		}
		z := (v - m) / sd
		x += z * z
	}

	dof := len(values) - 1
	tail := (100 - percent) / 100 / 2
	res := ChiSquared{
		Statistic:        x,
		Lower:            0,
		Upper:            math.Inf(1),
		DegreesOfFreedom: dof,
		Percent:          percent,
	}
	if tail > 0 {
		dist := distuv.ChiSquared{K: float64(dof)}
		res.Lower = dist.Quantile(tail)
		res.Upper = dist.Quantile(1 - tail)
	}
	return res, nil
}

// ChiSquaredPDF returns the density of the test's reference distribution.
func ChiSquaredPDF(dof int, x float64) float64 {
	return distuv.ChiSquared{K: float64(dof)}.Prob(x)
}
