package plot

import (
	"fmt"
	"math"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/aggregate"
	"github.com/brogergvhs/pollsmooth/internal/table"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// room to the right of the last poll for the end-point label
const labelRoom = 5 * day

// SummaryLine plots every poll for sel as a lettered point, one letter
// per pollster, with the smoothed trend through them and its latest
// value written at the end of the line.
func SummaryLine(t *table.Table, sel aggregate.Selection, pointColor, lineColor drawing.Color, sm aggregate.Smoother, label string, cfg Config) (string, error) {
	values, err := sel.Resolve(t)
	if err != nil {
		return "", err
	}
	vs, ts := aggregate.Observed(t, values)
	if len(vs) == 0 {
		return "", fmt.Errorf("%w: no polls for %s", aggregate.ErrPrecondition, sel.Label())
	}

	groups, err := pointGroups(t, cfg.GroupColumn)
	if err != nil {
		return "", err
	}

	ch := newChart()
	var yb bounds
	yb.add(vs...)

	for i, g := range groups {
		ms := newMarkerSeries(g.name, marker(i), pointColor)
		for _, r := range g.rows {
			if r < len(t.Index) {
				ms.add(t.Index[r], values[r])
			}
		}
		if ms.Len() > 0 {
			ch.Series = append(ch.Series, ms)
		}
	}

	smoothed, ok, err := sm.Smooth(vs, ts)
	if err != nil {
		return "", fmt.Errorf("%s for %s: %w", sm.Name, sel.Label(), err)
	}
	if ok {
		name := sm.Name
		if label != "" {
			name = label + " " + sm.Name
		}
		line := timeLine(name, smoothed.Index, smoothed.Values, lineColor)
		if n := len(line.XValues); n > 0 {
			yb.add(line.YValues...)
			ch.Series = append(ch.Series, line, endLabel(line.XValues[n-1], line.YValues[n-1], lineColor))
		}
	} else {
		cfg.debugf("%s: window too wide for %d polls, line skipped", sm.Name, len(vs))
	}

	dateAxis(ch, ts[0], ts[len(ts)-1].Add(labelRoom), cfg.ConciseDates)
	valueAxis(ch, yb.lo, yb.hi)
	if inRange(ch.YAxis.Range, 50) {
		ch.Series = append(ch.Series, referenceLine(ch.XAxis.Range, 50))
	}
	ch.Elements = append(ch.Elements, chart.Legend(ch))

	if cfg.YLabel == "" {
		cfg.YLabel = "Per cent"
	}
	return Finalise(ch, cfg)
}

// SummaryLineByPollster draws a separate smoothed line for each pollster
// with at least two polls.
func SummaryLineByPollster(t *table.Table, sel aggregate.Selection, sm aggregate.Smoother, cfg Config) (string, error) {
	if cfg.GroupColumn == "" {
		return "", fmt.Errorf("%w: no pollster column", aggregate.ErrPrecondition)
	}
	values, err := sel.Resolve(t)
	if err != nil {
		return "", err
	}
	keys, rows, err := aggregate.GroupBy(t, cfg.GroupColumn)
	if err != nil {
		return "", err
	}

	ch := newChart()
	var (
		yb       bounds
		from, to time.Time
		drawn    int
	)

	for _, key := range keys {
		var (
			vs []float64
			ts []time.Time
		)
		for _, r := range rows[key] {
			if r < len(t.Index) && !math.IsNaN(values[r]) {
				vs = append(vs, values[r])
				ts = append(ts, t.Index[r])
			}
		}
		if len(vs) < 2 {
			cfg.debugf("%s: %d polls, skipped", key, len(vs))
			continue
		}

		c := palette[drawn%len(palette)]
		ms := newMarkerSeries(key, marker(drawn), c)
		for i := range vs {
			ms.add(ts[i], vs[i])
		}
		ch.Series = append(ch.Series, ms)
		yb.add(vs...)

		if from.IsZero() || ts[0].Before(from) {
			from = ts[0]
		}
		if ts[len(ts)-1].After(to) {
			to = ts[len(ts)-1]
		}
		drawn++

		smoothed, ok, err := sm.Smooth(vs, ts)
		if err != nil {
			return "", fmt.Errorf("%s for %s: %w", sm.Name, key, err)
		}
		if !ok {
			cfg.debugf("%s: window too wide for %s, line skipped", sm.Name, key)
			continue
		}
		line := timeLine(key, smoothed.Index, smoothed.Values, c)
		line.Style.StrokeWidth = 4
		if len(line.XValues) > 0 {
			yb.add(line.YValues...)
			ch.Series = append(ch.Series, line)
		}
	}

	if drawn == 0 {
		return "", fmt.Errorf("%w: no pollster has two polls for %s", aggregate.ErrPrecondition, sel.Label())
	}

	dateAxis(ch, from, to, cfg.ConciseDates)
	valueAxis(ch, yb.lo, yb.hi)
	if inRange(ch.YAxis.Range, 50) {
		ch.Series = append(ch.Series, referenceLine(ch.XAxis.Range, 50))
	}
	ch.Elements = append(ch.Elements, chart.Legend(ch))

	if cfg.YLabel == "" {
		cfg.YLabel = "Per cent"
	}
	return Finalise(ch, cfg)
}

type pointGroup struct {
	name string
	rows []int
}

func pointGroups(t *table.Table, column string) ([]pointGroup, error) {
	if column == "" {
		all := make([]int, t.NumRows())
		for i := range all {
			all[i] = i
		}
		return []pointGroup{{name: "polls", rows: all}}, nil
	}

	keys, rows, err := aggregate.GroupBy(t, column)
	if err != nil {
		return nil, err
	}
	out := make([]pointGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, pointGroup{name: k, rows: rows[k]})
	}
	return out, nil
}

func endLabel(x time.Time, y float64, c drawing.Color) chart.AnnotationSeries {
	return chart.AnnotationSeries{
		Annotations: []chart.Value2{{
			XValue: chart.TimeToFloat64(x),
			YValue: y,
			Label:  fmt.Sprintf("%.1f", y),
		}},
		Style: chart.Style{
			StrokeColor: c,
			FontColor:   c,
			FontSize:    8,
		},
	}
}
