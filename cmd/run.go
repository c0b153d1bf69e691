package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/clean"
	"github.com/brogergvhs/pollsmooth/internal/config"
	"github.com/brogergvhs/pollsmooth/internal/diag"
	"github.com/brogergvhs/pollsmooth/internal/extract"
	"github.com/brogergvhs/pollsmooth/internal/fetch"
	"github.com/brogergvhs/pollsmooth/internal/table"
	"github.com/brogergvhs/pollsmooth/internal/ui"
	"github.com/brogergvhs/pollsmooth/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// source flags shared by every command that reads poll tables
var (
	flagURL              string
	flagInput            string
	flagTable            int
	flagPick             bool
	flagOutput           string
	flagCookie           string
	flagCookieFile       string
	flagUserAgent        string
	flagCloudflareBypass bool
)

func addSourceFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagURL, "url", "", "page holding the poll tables ({rn} is replaced to defeat caches)")
	c.Flags().StringVar(&flagInput, "input", "", "read a saved HTML page instead of fetching")
	c.Flags().IntVar(&flagTable, "table", 0, "index of the poll table on the page")
	c.Flags().BoolVar(&flagPick, "pick", false, "choose the table interactively")
	c.Flags().StringVar(&flagOutput, "output", "", "output folder")
	c.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	c.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	c.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	c.Flags().BoolVar(&flagCloudflareBypass, "cloudflare-bypass", false, "send browser-like TLS settings")
}

// run holds what one command invocation shares: settings, the logger and
// the data-quality log reported when it ends.
type run struct {
	cfg   *config.Config
	log   *ui.Logger
	diag  *diag.Log
	out   io.Writer
	stats *ui.Stats
	start time.Time
}

func newRun(cmd *cobra.Command) (*run, error) {
	var tableIdx *int
	if cmd.Flags().Changed("table") {
		tableIdx = &flagTable
	}

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		Output:           flagOutput,
		DefaultURL:       flagURL,
		InputFile:        flagInput,
		TableIndex:       tableIdx,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		UserAgent:        flagUserAgent,
		CloudflareBypass: flagCloudflareBypass,
	})
	if err != nil {
		return nil, err
	}
	// --url wins over a configured input file
	if flagURL != "" && flagInput == "" {
		cfg.InputFile = ""
	}

	logSvc := ui.NewLogger(cfg.Debug)
	r := &run{
		cfg:   cfg,
		log:   logSvc,
		diag:  diag.New(logSvc),
		out:   cmd.OutOrStdout(),
		stats: &ui.Stats{},
		start: time.Now(),
	}
	logSvc.Debugf("Config file: %s", strings.TrimSpace(usedPath))
	logSvc.Debugf("Run %s", r.diag.RunID)
	return r, nil
}

// tables reads the page and extracts every table on it.
func (r *run) tables(ctx context.Context) ([]*table.Table, error) {
	var (
		page string
		err  error
	)

	if r.cfg.InputFile != "" {
		r.log.Infof("Reading %s", r.cfg.InputFile)
		page, err = fetch.FetchFile(r.cfg.InputFile, r.diag)
	} else {
		if r.cfg.DefaultURL == "" {
			return nil, fmt.Errorf("missing --url and no default_url in config")
		}

		client, cerr := util.NewHTTPClient(util.HTTPClientOptions{
			UserAgent:        util.PickUserAgent(r.cfg.UserAgent),
			Cookie:           r.cfg.Cookie,
			CookieFile:       r.cfg.CookieFile,
			CloudflareBypass: r.cfg.CloudflareBypass,
			DebugLogger:      r.log,
		})
		if cerr != nil {
			return nil, cerr
		}

		r.log.Infof("Fetching %s", r.cfg.DefaultURL)
		page, err = fetch.New(client).Fetch(ctx, r.cfg.DefaultURL)
	}
	if err != nil {
		return nil, err
	}

	tables, err := extract.Tables(page)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables found")
	}
	r.stats.TotalTables.Add(int64(len(tables)))
	return tables, nil
}

// rawTable returns the configured table, or the one the user picks.
func (r *run) rawTable(ctx context.Context) (*table.Table, int, error) {
	tables, err := r.tables(ctx)
	if err != nil {
		return nil, 0, err
	}

	idx := r.cfg.TableIndex
	if flagPick {
		idx, err = pickTable(tables)
		if err != nil {
			return nil, 0, err
		}
	}
	if idx < 0 || idx >= len(tables) {
		return nil, 0, fmt.Errorf("table %d requested but the page has %d tables", idx, len(tables))
	}
	return tables[idx], idx, nil
}

// cleaned returns the selected table after cleaning.
func (r *run) cleaned(ctx context.Context) (*table.Table, error) {
	raw, idx, err := r.rawTable(ctx)
	if err != nil {
		return nil, err
	}

	t, err := clean.Clean(raw, r.cfg.CleanOptions(), r.diag)
	if err != nil {
		return nil, fmt.Errorf("table %d: %w", idx, err)
	}
	r.stats.TotalRows.Add(int64(t.NumRows()))
	r.log.Infof("Table %d: %d polls, %d columns", idx, t.NumRows(), t.NumCols())
	return t, nil
}

// finish prints the data-quality report for the run.
func (r *run) finish() {
	if r.diag.Len() == 0 {
		return
	}
	fmt.Fprintf(r.out, "\n%d data warnings (run %s):\n", r.diag.Len(), r.diag.RunID)
	r.diag.Report(r.out)
}

func pickTable(tables []*table.Table) (int, error) {
	items := make([]string, len(tables))
	for i, t := range tables {
		items[i] = describeTable(i, t)
	}

	prompt := promptui.Select{
		Label: "Select poll table",
		Items: items,
		Size:  12,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled")
	}
	return idx, nil
}

func describeTable(i int, t *table.Table) string {
	names := t.FlatNames()
	if len(names) > 4 {
		names = append(names[:4:4], "…")
	}
	return fmt.Sprintf("%3d) %4d rows x %2d cols  %s", i, t.NumRows(), t.NumCols(), strings.Join(names, " | "))
}

func ensureOutput(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}
	return nil
}
