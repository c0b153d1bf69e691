package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/brogergvhs/pollsmooth/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different poll profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			picked, err := pickProfile()
			if err != nil {
				return err
			}
			label = picked
		}

		// refuse profiles that would fail on the next run
		cfg, err := config.LoadProfile(label)
		if err != nil {
			return err
		}
		if err := config.SwitchConfig(label); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Switched to: %s\n", label)
		describeProfile(out, cfg)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}

// pickProfile lists the profiles with their source and chart count.
func pickProfile() (string, error) {
	list, err := config.ListConfigs()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("no configs available, run `pollsmooth config init`")
	}

	items := make([]string, len(list))
	for i, c := range list {
		item := c.Label
		if cfg, err := config.LoadProfile(c.Label); err == nil {
			item = fmt.Sprintf("%s  (%d charts, %s)", c.Label, len(cfg.Charts), profileSource(cfg))
		} else {
			item += "  (invalid)"
		}
		if c.Active {
			item += "  *"
		}
		items[i] = item
	}

	prompt := promptui.Select{
		Label: "Select poll profile",
		Items: items,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled")
	}
	return list[idx].Label, nil
}

func profileSource(cfg *config.Config) string {
	if cfg.InputFile != "" {
		return cfg.InputFile
	}
	return cfg.DefaultURL
}

// describeProfile prints where a profile reads polls from and which
// charts it renders.
func describeProfile(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "  source: %s (table %d)\n", profileSource(cfg), cfg.TableIndex)
	if len(cfg.Charts) == 0 {
		fmt.Fprintln(w, "  charts: none")
		return
	}
	fmt.Fprintf(w, "  charts: %d\n", len(cfg.Charts))
	for _, ch := range cfg.Charts {
		fmt.Fprintf(w, "    - %s [%s]\n", ch.Title, strings.Join(ch.Columns, " + "))
	}
}
