package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/aggregate"
	"github.com/brogergvhs/pollsmooth/internal/config"
	"github.com/brogergvhs/pollsmooth/internal/pick"
	"github.com/brogergvhs/pollsmooth/internal/plot"
	"github.com/brogergvhs/pollsmooth/internal/table"
	"github.com/brogergvhs/pollsmooth/internal/ui"
	"github.com/brogergvhs/pollsmooth/internal/util"

	"github.com/spf13/cobra"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	flagOnly     []string
	flagRange    string
	flagList     string
	flagZip      bool
	flagDryRun   bool
	flagStraight bool
)

func init() {
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the configured summary charts as PNG files",
		RunE:  runChart,
	}

	addSourceFlags(chartCmd)
	chartCmd.Flags().StringSliceVar(&flagOnly, "only", nil, "render only charts whose title contains this text")
	chartCmd.Flags().StringVar(&flagRange, "range", "", "render charts by position in the config (e.g. 2-4)")
	chartCmd.Flags().StringVar(&flagList, "list", "", "render specific charts by position (e.g. 1,3)")
	chartCmd.Flags().BoolVar(&flagZip, "zip", false, "also bundle the charts into charts.zip")
	chartCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list the charts that would be rendered")
	chartCmd.Flags().BoolVar(&flagStraight, "straight-ticks", false, "do not rotate date tick labels")

	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, _ []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	defer r.finish()

	specs, err := pick.Select(r.cfg.Charts, flagRange, flagList)
	if err != nil {
		return err
	}
	specs = selectCharts(specs, flagOnly)
	if len(specs) == 0 {
		return fmt.Errorf("no charts selected")
	}
	if flagDryRun {
		fmt.Fprintf(r.out, "Dry-run: %d charts selected.\n\n", len(specs))
		for i, s := range specs {
			fmt.Fprintf(r.out, "%3d) %s\n    %s, %s\n", i+1, s.Title, strings.Join(s.Columns, " + "), s.BuildSmoother().Name)
		}
		return nil
	}

	t, err := r.cleaned(cmd.Context())
	if err != nil {
		return err
	}

	if err := ensureOutput(r.cfg.Output); err != nil {
		return err
	}
	util.SetupInterruptHandler(r.cfg.Output, os.Stderr)

	pm := ui.NewProgressManager(os.Stderr)
	handle := pm.Register("charts")
	handle.SetTotal(len(specs))

	brand := pollsterColumn(t, r.cfg.BrandColumns)
	var (
		paths  []string
		failed int
	)
	for _, spec := range specs {
		path, err := renderChart(r, t, spec, brand)
		if err != nil {
			r.log.Errorf("Chart %q failed: %v", spec.Title, err)
			failed++
			continue
		}

		var size int64
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
		handle.Add(size)
		paths = append(paths, path)
		r.stats.TotalCharts.Add(1)
		r.stats.TotalBytes.Add(size)
	}
	handle.MarkDone()
	pm.Close()

	if flagZip && len(paths) > 0 {
		zipPath := filepath.Join(r.cfg.Output, "charts.zip")
		if err := util.ZipFiles(paths, zipPath); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Bundled %d charts into %s\n", len(paths), zipPath)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Chart Summary:")
	fmt.Fprintf(r.out, "Polls:    %d\n", r.stats.TotalRows.Load())
	fmt.Fprintf(r.out, "Charts:   %d\n", r.stats.TotalCharts.Load())
	fmt.Fprintf(r.out, "Data:     %s\n", util.Human(r.stats.TotalBytes.Load()))
	fmt.Fprintf(r.out, "Time:     %s\n", time.Since(r.start).Round(time.Second))

	if failed > 0 {
		return fmt.Errorf("%d of %d charts failed", failed, len(specs))
	}
	return nil
}

func selectCharts(all []config.ChartSpec, only []string) []config.ChartSpec {
	if len(only) == 0 {
		return all
	}

	var out []config.ChartSpec
	for _, s := range all {
		for _, o := range only {
			if strings.Contains(strings.ToLower(s.Title), strings.ToLower(o)) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// pollsterColumn returns the first brand column present in t.
func pollsterColumn(t *table.Table, candidates []string) string {
	for _, c := range candidates {
		if _, ok := t.Lookup(c); ok {
			return c
		}
	}
	return ""
}

func renderChart(r *run, t *table.Table, spec config.ChartSpec, brand string) (string, error) {
	pc := plot.Config{
		Title:                spec.Title,
		LFooter:              r.cfg.LFooter,
		RFooter:              r.cfg.RFooter,
		Location:             r.cfg.Output,
		ConciseDates:         r.cfg.ConciseDates,
		StraightenTickLabels: r.cfg.StraightenTicks || flagStraight,
		SaveSuffix:           spec.Suffix,
		GroupColumn:          brand,
		Log:                  r.log,
	}
	sel := aggregate.NewSelection(spec.Columns...)
	sm := spec.BuildSmoother()

	if spec.ByPollster {
		return plot.SummaryLineByPollster(t, sel, sm, pc)
	}

	line, err := colorOr(spec.Color, "darkblue")
	if err != nil {
		return "", err
	}
	point := line
	if spec.PointColor != "" {
		if point, err = plot.ParseColor(spec.PointColor); err != nil {
			return "", err
		}
	}
	return plot.SummaryLine(t, sel, point, line, sm, spec.Label, pc)
}

func colorOr(s, fallback string) (drawing.Color, error) {
	if s == "" {
		s = fallback
	}
	return plot.ParseColor(s)
}
