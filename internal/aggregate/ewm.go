package aggregate

import (
	"fmt"
	"math"
	"time"
)

// EWM is a time aware exponentially weighted mean. Every observation
// contributes with weight 0.5^(age/halflife), where age is measured
// from the point being estimated, and the weights are normalised over
// all observations seen so far.
func EWM(values []float64, times []time.Time, halflife time.Duration) (Series, error) {
	if halflife <= 0 {
		return Series{}, fmt.Errorf("%w: halflife must be positive, got %s", ErrPrecondition, halflife)
	}
	if err := checkAligned(values, times); err != nil {
		return Series{}, err
	}

	out := Series{
		Index:  append([]time.Time(nil), times...),
		Values: make([]float64, len(values)),
	}

	var num, den float64
	for i, v := range values {
		if i > 0 {
			decay := math.Pow(0.5, float64(times[i].Sub(times[i-1]))/float64(halflife))
			num *= decay
			den *= decay
		}
		num += v
		den++
		out.Values[i] = num / den
	}

	return out, nil
}
