package cmd

import (
	"fmt"
	"math"

	"github.com/brogergvhs/pollsmooth/internal/aggregate"
	"github.com/brogergvhs/pollsmooth/internal/plot"
	"github.com/brogergvhs/pollsmooth/internal/table"

	"github.com/spf13/cobra"
)

var (
	flagColumns      []string
	flagSampleColumn string
	flagPercent      float64
	flagMean         float64
	flagPollster     string
	flagPlot         bool
)

func init() {
	chisqCmd := &cobra.Command{
		Use:   "chisq",
		Short: "Test whether poll results spread more or less than sampling error predicts",
		RunE:  runChisq,
	}

	addSourceFlags(chisqCmd)
	chisqCmd.Flags().StringSliceVar(&flagColumns, "column", nil, "column to test; repeat to test the sum of several")
	chisqCmd.Flags().StringVar(&flagSampleColumn, "sample-column", "Sample size", "column holding each poll's sample size")
	chisqCmd.Flags().Float64Var(&flagPercent, "percent", 0, "confidence band in per cent (default from config)")
	chisqCmd.Flags().Float64Var(&flagMean, "mean", 0, "expected value; defaults to the mean of the polls")
	chisqCmd.Flags().StringVar(&flagPollster, "pollster", "", "only use polls from this pollster")
	chisqCmd.Flags().BoolVar(&flagPlot, "plot", false, "also chart the test")
	_ = chisqCmd.MarkFlagRequired("column")

	rootCmd.AddCommand(chisqCmd)
}

func runChisq(cmd *cobra.Command, _ []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	defer r.finish()

	t, err := r.cleaned(cmd.Context())
	if err != nil {
		return err
	}

	if flagPollster != "" {
		if t, err = onlyPollster(t, r.cfg.BrandColumns, flagPollster); err != nil {
			return err
		}
	}

	sel := aggregate.NewSelection(flagColumns...)
	values, sizes, err := chisqInputs(r, t, sel, flagSampleColumn)
	if err != nil {
		return err
	}

	percent := r.cfg.ConfidencePercent
	if cmd.Flags().Changed("percent") {
		percent = flagPercent
	}
	var mean *float64
	if cmd.Flags().Changed("mean") {
		mean = &flagMean
	}

	res, err := aggregate.ChiSquaredTest(values, sizes, percent, mean)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s over %d polls\n%s\n", sel.Label(), len(values), res)

	if flagPlot {
		if err := ensureOutput(r.cfg.Output); err != nil {
			return err
		}
		title := "Chi-squared " + sel.Label()
		if flagPollster != "" {
			title += " " + flagPollster
		}
		path, err := plot.ChiSquarePlot(res, plot.Config{
			Title:    title,
			LFooter:  r.cfg.LFooter,
			RFooter:  r.cfg.RFooter,
			Location: r.cfg.Output,
			Log:      r.log,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Wrote %s\n", path)
	}
	return nil
}

// chisqInputs pairs each poll's value with its sample size, skipping
// polls missing either.
func chisqInputs(r *run, t *table.Table, sel aggregate.Selection, sampleColumn string) ([]float64, []float64, error) {
	values, err := sel.Resolve(t)
	if err != nil {
		return nil, nil, err
	}
	sc, ok := t.Lookup(sampleColumn)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no column %q", aggregate.ErrPrecondition, sampleColumn)
	}
	sizes := t.Floats(sc)

	var vs, ns []float64
	skipped := 0
	for i := range values {
		if math.IsNaN(values[i]) {
			continue
		}
		if math.IsNaN(sizes[i]) || sizes[i] <= 0 {
			skipped++
			continue
		}
		vs = append(vs, values[i])
		ns = append(ns, sizes[i])
	}
	if skipped > 0 {
		r.diag.Warnf("%d polls of %s have no sample size and were left out", skipped, sel.Label())
	}
	return vs, ns, nil
}

func onlyPollster(t *table.Table, brands []string, name string) (*table.Table, error) {
	col := pollsterColumn(t, brands)
	if col == "" {
		return nil, fmt.Errorf("%w: no pollster column", aggregate.ErrPrecondition)
	}

	_, groups, err := aggregate.GroupBy(t, col)
	if err != nil {
		return nil, err
	}
	rows, ok := groups[name]
	if !ok {
		return nil, fmt.Errorf("no polls from %q", name)
	}
	return t.Subset(rows), nil
}
