package plot

import (
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// markerSeries is a scatter series drawn with a letter at each point,
// so pollsters stay distinguishable when they share a colour.
type markerSeries struct {
	Name   string
	Marker string
	Style  chart.Style

	XValues []float64
	YValues []float64
}

func newMarkerSeries(name, marker string, c drawing.Color) *markerSeries {
	return &markerSeries{
		Name:   marker + ": " + name,
		Marker: marker,
		Style: chart.Style{
			FontColor:   c,
			FontSize:    7,
			StrokeColor: c,
			StrokeWidth: chart.Disabled,
		},
	}
}

func (m *markerSeries) add(t time.Time, v float64) {
	if math.IsNaN(v) || t.IsZero() {
		return
	}
	m.XValues = append(m.XValues, chart.TimeToFloat64(t))
	m.YValues = append(m.YValues, v)
}

func (m *markerSeries) GetName() string { return m.Name }

func (m *markerSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (m *markerSeries) GetStyle() chart.Style { return m.Style }

func (m *markerSeries) Len() int { return len(m.XValues) }

func (m *markerSeries) GetValues(i int) (float64, float64) {
	return m.XValues[i], m.YValues[i]
}

func (m *markerSeries) Validate() error {
	if len(m.XValues) != len(m.YValues) {
		return fmt.Errorf("%s: x and y values differ in length", m.Name)
	}
	return nil
}

func (m *markerSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	st := m.Style.InheritFrom(defaults)
	box := chart.Draw.MeasureText(r, m.Marker, st)
	w, h := box.Width(), box.Height()

	for i := range m.XValues {
		x := canvasBox.Left + xrange.Translate(m.XValues[i])
		y := canvasBox.Bottom - yrange.Translate(m.YValues[i])
		chart.Draw.Text(r, m.Marker, x-w/2, y+h/2, st)
	}
}

// marker returns the letter for the i'th group.
func marker(i int) string {
	return string(rune('a' + i%26))
}

// timeLine turns a smoothed series into a chart line, leaving out
// positions the smoother could not estimate.
func timeLine(name string, index []time.Time, values []float64, c drawing.Color) chart.TimeSeries {
	ts := chart.TimeSeries{Name: name, Style: lineStyle(c)}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ts.XValues = append(ts.XValues, index[i])
		ts.YValues = append(ts.YValues, v)
	}
	return ts
}

// referenceLine is a dashed horizontal line across the x range.
func referenceLine(xrange chart.Range, y float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		XValues: []float64{xrange.GetMin(), xrange.GetMax()},
		YValues: []float64{y, y},
		Style: chart.Style{
			StrokeColor:     colorReference,
			StrokeWidth:     3,
			StrokeDashArray: []float64{10, 6},
		},
	}
}

// verticalLine spans the y range at x.
func verticalLine(name string, x, lo, hi float64, c drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{x, x},
		YValues: []float64{lo, hi},
		Style:   lineStyle(c),
	}
}

// bounds tracks the smallest and largest finite values seen.
type bounds struct {
	lo, hi float64
	seen   bool
}

func (b *bounds) add(vs ...float64) {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !b.seen {
			b.lo, b.hi, b.seen = v, v, true
			continue
		}
		b.lo = math.Min(b.lo, v)
		b.hi = math.Max(b.hi, v)
	}
}
