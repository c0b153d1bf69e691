package plot

import (
	"fmt"
	"math"

	"github.com/brogergvhs/pollsmooth/internal/aggregate"

	"github.com/wcharczuk/go-chart/v2"
)

const pdfPoints = 500

// ChiSquarePlot draws the reference distribution of a dispersion test
// with its critical values and the observed statistic marked.
func ChiSquarePlot(res aggregate.ChiSquared, cfg Config) (string, error) {
	if res.DegreesOfFreedom < 1 {
		return "", fmt.Errorf("%w: %d degrees of freedom", aggregate.ErrPrecondition, res.DegreesOfFreedom)
	}

	span := res.Lower + res.Upper
	if math.IsInf(span, 0) || math.IsNaN(span) {
		span = 3 * float64(res.DegreesOfFreedom)
	}
	xmax := span
	if !math.IsNaN(res.Statistic) && !math.IsInf(res.Statistic, 0) {
		xmax = math.Max(xmax, res.Statistic*1.05)
	}

	pdf := chart.ContinuousSeries{
		Name:  fmt.Sprintf("χ² pdf (%d dof)", res.DegreesOfFreedom),
		Style: lineStyle(colorReference),
	}
	var yb bounds
	for i := 0; i < pdfPoints; i++ {
		x := span * float64(i) / (pdfPoints - 1)
		y := aggregate.ChiSquaredPDF(res.DegreesOfFreedom, x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pdf.XValues = append(pdf.XValues, x)
		pdf.YValues = append(pdf.YValues, y)
		yb.add(y)
	}
	if len(pdf.XValues) == 0 {
		return "", fmt.Errorf("%w: empty chi-squared density", aggregate.ErrPrecondition)
	}
	top := yb.hi * 1.05

	ch := newChart()
	ch.XAxis.Range = &chart.ContinuousRange{Min: 0, Max: xmax}
	ch.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: top}
	ch.Series = append(ch.Series, pdf)

	for _, b := range []struct {
		name string
		x    float64
	}{{"lower", res.Lower}, {"upper", res.Upper}} {
		if math.IsInf(b.x, 0) || b.x > xmax {
			continue
		}
		ch.Series = append(ch.Series, verticalLine(fmt.Sprintf("%s %.1f", b.name, b.x), b.x, 0, top, colorBounds))
	}
	if res.Statistic >= 0 && res.Statistic <= xmax {
		ch.Series = append(ch.Series, verticalLine(fmt.Sprintf("χ² %.1f", res.Statistic), res.Statistic, 0, top, colorStatistic))
	}

	text := fmt.Sprintf("%g%% between %.1f and %.1f; χ² = %.1f (%s)",
		res.Percent, res.Lower, res.Upper, res.Statistic, res.Verdict())
	ch.Elements = append(ch.Elements, caption(text), chart.Legend(ch))

	if cfg.XLabel == "" {
		cfg.XLabel = "χ²"
	}
	if cfg.YLabel == "" {
		cfg.YLabel = "Probability density"
	}
	return Finalise(ch, cfg)
}

// caption writes text in the top right corner of the plot area.
func caption(text string) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		st := chart.Style{FontSize: 8, FontColor: colorBounds}.InheritFrom(defaults)
		box := chart.Draw.MeasureText(r, text, st)
		chart.Draw.Text(r, text, canvasBox.Right-box.Width()-20, canvasBox.Top+box.Height()+20, st)
	}
}
