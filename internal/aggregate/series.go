// Package aggregate computes poll averages and dispersion checks over a
// cleaned, date indexed table.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrPrecondition = errors.New("aggregate precondition failed")

// Series is a sequence of values aligned with a time index.
type Series struct {
	Index  []time.Time
	Values []float64
}

func (s Series) Len() int { return len(s.Values) }

// Last returns the final value, or NaN for an empty series.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// Smoother turns a raw series into a trend line. ok is false when the
// smoother cannot produce a line for this input without it being an
// error, for example a window wider than the data.
type Smoother struct {
	Name string
	Fn   func(values []float64, times []time.Time) (Series, bool, error)
}

func (s Smoother) Smooth(values []float64, times []time.Time) (Series, bool, error) {
	return s.Fn(values, times)
}

func EWMSmoother(halflife time.Duration) Smoother {
	return Smoother{
		Name: fmt.Sprintf("EWM (halflife %s)", humanDays(halflife)),
		Fn: func(values []float64, times []time.Time) (Series, bool, error) {
			s, err := EWM(values, times, halflife)
			return s, err == nil, err
		},
	}
}

func LowessSmoother(windowDays float64) Smoother {
	return Smoother{
		Name: fmt.Sprintf("LOWESS (%g days)", windowDays),
		Fn: func(values []float64, times []time.Time) (Series, bool, error) {
			return Lowess(values, times, windowDays)
		},
	}
}

func humanDays(d time.Duration) string {
	days := d.Hours() / 24
	if days == math.Trunc(days) {
		return fmt.Sprintf("%d days", int(days))
	}
	return d.String()
}

func checkAligned(values []float64, times []time.Time) error {
	if len(values) != len(times) {
		return fmt.Errorf("%w: %d values but %d times", ErrPrecondition, len(values), len(times))
	}
	for i, v := range values {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: value %d is missing", ErrPrecondition, i)
		}
		if times[i].IsZero() {
			return fmt.Errorf("%w: time %d is missing", ErrPrecondition, i)
		}
		if i > 0 && times[i].Before(times[i-1]) {
			return fmt.Errorf("%w: times are not sorted at %d", ErrPrecondition, i)
		}
	}
	return nil
}
