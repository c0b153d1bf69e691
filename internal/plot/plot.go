// Package plot renders poll charts to PNG files.
package plot

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoTitle = errors.New("chart has no title")

const (
	// 9 x 4.5 inches at 300 DPI
	DPI    = 300
	Width  = 2700
	Height = 1350

	day = 24 * time.Hour

	// footer text sits half a per cent in from the edges
	footerX = Width * 5 / 1000
	footerY = Height - Height*5/1000
)

// Config holds the labels and output settings shared by every chart.
type Config struct {
	Title                string
	XLabel               string
	YLabel               string
	LFooter              string
	RFooter              string
	Location             string
	ConciseDates         bool
	StraightenTickLabels bool
	SaveSuffix           string

	// GroupColumn names the pollster column used to pick point markers.
	// Empty puts every point in one group.
	GroupColumn string

	Log Debugger
}

type Debugger interface {
	Debugf(format string, args ...any)
}

func (c Config) debugf(format string, args ...any) {
	if c.Log != nil {
		c.Log.Debugf(format, args...)
	}
}

// FileStem is the output path without extension. Characters that are
// awkward in file names are dropped from the title.
func (c Config) FileStem() string {
	title := strings.NewReplacer("/", "", `\`, "", "^", "", ":", "", "$", "").Replace(c.Title)
	stem := filepath.Join(c.Location, title)
	if c.SaveSuffix != "" {
		stem += "-" + c.SaveSuffix
	}
	return stem
}

// newChart returns a chart sized and padded for the footers.
func newChart() *chart.Chart {
	return &chart.Chart{
		Width:  Width,
		Height: Height,
		DPI:    DPI,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 40, Right: 160, Bottom: 110},
		},
	}
}

// Finalise labels the chart, then writes it to cfg.Location. The PNG is
// rendered to a temporary file first so an interrupted run never leaves
// a truncated chart behind.
func Finalise(ch *chart.Chart, cfg Config) (string, error) {
	if cfg.Title == "" {
		return "", ErrNoTitle
	}

	ch.Title = cfg.Title
	ch.XAxis.Name = cfg.XLabel
	ch.YAxis.Name = cfg.YLabel
	ch.Elements = append(ch.Elements, footer(cfg.LFooter, cfg.RFooter))

	if !cfg.StraightenTickLabels {
		ch.XAxis.TickStyle.TextRotationDegrees = 30
	}

	if err := os.MkdirAll(cfg.Location, 0755); err != nil {
		return "", fmt.Errorf("create chart folder: %w", err)
	}

	path := cfg.FileStem() + ".png"
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := ch.Render(chart.PNG, f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("render %q: %w", cfg.Title, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}

func footer(left, right string) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		st := chart.Style{
			FontSize:  9,
			FontColor: colorReference,
		}.InheritFrom(defaults)

		if left != "" {
			chart.Draw.Text(r, left, footerX, footerY, st)
		}
		if right != "" {
			w := chart.Draw.MeasureText(r, right, st).Width()
			chart.Draw.Text(r, right, Width-footerX-w, footerY, st)
		}
	}
}

// dateAxis sets a time x axis over [from, to].
func dateAxis(ch *chart.Chart, from, to time.Time, concise bool) {
	if !to.After(from) {
		from, to = from.Add(-day), to.Add(day)
	}
	margin := time.Duration(float64(to.Sub(from)) * 0.02)
	from, to = from.Add(-margin), to.Add(margin)

	ch.XAxis.Range = &chart.ContinuousRange{
		Min: chart.TimeToFloat64(from),
		Max: chart.TimeToFloat64(to),
	}
	ch.XAxis.ValueFormatter = chart.TimeValueFormatterWithFormat("2006-01-02")
	if concise {
		ch.XAxis.Ticks = dateTicks(from, to)
	}
}

// valueAxis sets the y axis to span the values with a 2% margin.
func valueAxis(ch *chart.Chart, lo, hi float64) {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		lo, hi = lo-1, hi+1
	}
	margin := (hi - lo) * 0.02
	ch.YAxis.Range = &chart.ContinuousRange{Min: lo - margin, Max: hi + margin}
}

func inRange(rg chart.Range, v float64) bool {
	return rg != nil && rg.GetMin() <= v && v <= rg.GetMax()
}

// tick spacing candidates, finest first
var tickSteps = []struct {
	years, months, days int
	layout              string
}{
	{0, 0, 1, "2 Jan"},
	{0, 0, 7, "2 Jan"},
	{0, 1, 0, "Jan 2006"},
	{0, 2, 0, "Jan 2006"},
	{0, 3, 0, "Jan 2006"},
	{0, 6, 0, "Jan 2006"},
	{1, 0, 0, "2006"},
	{2, 0, 0, "2006"},
	{5, 0, 0, "2006"},
	{10, 0, 0, "2006"},
}

const maxTicks = 13

// dateTicks uses the finest calendar spacing that needs at most maxTicks
// ticks, labelling them no more precisely than the spacing needs.
func dateTicks(from, to time.Time) []chart.Tick {
	var ticks []chart.Tick
	for _, step := range tickSteps {
		ticks = ticksEvery(from, to, step.years, step.months, step.days, step.layout)
		if len(ticks) <= maxTicks {
			break
		}
	}
	return ticks
}

func ticksEvery(from, to time.Time, years, months, days int, layout string) []chart.Tick {
	var start time.Time
	switch {
	case years > 0:
		start = time.Date(from.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case months > 0:
		start = time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		start = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	}

	var ticks []chart.Tick
	for t := start; !t.After(to); t = t.AddDate(years, months, days) {
		if t.Before(from) {
			continue
		}
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: t.Format(layout)})
	}
	return ticks
}

func lineStyle(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: c,
		StrokeWidth: 7,
	}
}
