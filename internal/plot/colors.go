package plot

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Party line colours and their lighter point colours.
var (
	ColorCoalition = mustHex("00008b") // darkblue
	ColorLabor     = mustHex("dd0000")
	ColorOther     = mustHex("ff8c00") // darkorange
	ColorGreen     = mustHex("006400") // darkgreen

	PointColorCoalition = mustHex("0000dd")
	PointColorLabor     = mustHex("dd0000")
	PointColorOther     = mustHex("ffa500") // orange
	PointColorGreen     = mustHex("008000") // green

	colorReference = mustHex("999999")
	colorBounds    = mustHex("4169e1") // royalblue
	colorStatistic = mustHex("ff8c00") // darkorange
)

var named = map[string]drawing.Color{
	"coalition":  ColorCoalition,
	"labor":      ColorLabor,
	"other":      ColorOther,
	"green":      PointColorGreen,
	"darkblue":   ColorCoalition,
	"darkorange": ColorOther,
	"darkgreen":  ColorGreen,
	"orange":     PointColorOther,
	"royalblue":  colorBounds,
	"red":        mustHex("ff0000"),
	"blue":       mustHex("0000ff"),
	"black":      mustHex("000000"),
	"grey":       colorReference,
	"gray":       colorReference,
}

// palette is cycled through when each pollster gets its own colour.
var palette = []drawing.Color{
	mustHex("1f77b4"), mustHex("ff7f0e"), mustHex("2ca02c"), mustHex("d62728"),
	mustHex("9467bd"), mustHex("8c564b"), mustHex("e377c2"), mustHex("7f7f7f"),
	mustHex("bcbd22"), mustHex("17becf"),
}

// ParseColor accepts a "#rrggbb" hex value or one of the named colours.
func ParseColor(s string) (drawing.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 3 {
		return drawing.Color{}, fmt.Errorf("unknown colour %q", s)
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return drawing.Color{}, fmt.Errorf("unknown colour %q", s)
		}
	}
	return drawing.ColorFromHex(hex), nil
}

func mustHex(hex string) drawing.Color {
	return drawing.ColorFromHex(hex)
}
