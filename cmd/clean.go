package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/brogergvhs/pollsmooth/internal/export"
	"github.com/brogergvhs/pollsmooth/internal/table"

	"github.com/spf13/cobra"
)

var (
	flagCSV      string
	flagXLSX     string
	flagDescribe bool
	flagTwoLevel bool
	flagBOM      bool
)

func init() {
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean a poll table and export it",
		RunE:  runClean,
	}

	addSourceFlags(cleanCmd)
	cleanCmd.Flags().StringVar(&flagCSV, "csv", "", "write the cleaned table to this CSV file")
	cleanCmd.Flags().StringVar(&flagXLSX, "xlsx", "", "write the cleaned table to this XLSX file")
	cleanCmd.Flags().BoolVar(&flagDescribe, "describe", false, "print summary statistics of the numeric columns")
	cleanCmd.Flags().BoolVar(&flagTwoLevel, "two-level", false, "keep both header levels in exports")
	cleanCmd.Flags().BoolVar(&flagBOM, "bom", false, "start CSV output with a UTF-8 byte order mark")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	defer r.finish()

	t, err := r.cleaned(cmd.Context())
	if err != nil {
		return err
	}

	opts := export.Options{TwoLevel: flagTwoLevel, BOM: flagBOM}
	wrote := false

	if flagCSV != "" {
		path := inOutput(r.cfg.Output, flagCSV)
		if err := export.WriteCSV(t, path, opts); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Wrote %s\n", path)
		wrote = true
	}
	if flagXLSX != "" {
		path := inOutput(r.cfg.Output, flagXLSX)
		if err := export.WriteXLSX(t, path, opts); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Wrote %s\n", path)
		wrote = true
	}

	if flagDescribe {
		d, err := export.Describe(t)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, d)
		wrote = true
	}

	if !wrote {
		printTable(r, t)
	}
	return nil
}

// inOutput places relative export paths under the output folder.
func inOutput(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func printTable(r *run, t *table.Table) {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, h := range export.Headers(t, export.Options{}) {
		fmt.Fprintln(w, strings.Join(h, "\t"))
	}
	for _, rec := range export.Records(t) {
		fmt.Fprintln(w, strings.Join(rec, "\t"))
	}
	_ = w.Flush()
}
