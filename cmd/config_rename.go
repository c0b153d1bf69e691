package cmd

import (
	"fmt"

	"github.com/brogergvhs/pollsmooth/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a poll profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldLabel, newLabel := args[0], args[1]

		active, _ := config.CurrentLabel()
		if err := config.RenameConfig(oldLabel, newLabel); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Renamed config %q → %q\n", oldLabel, newLabel)
		if active == oldLabel {
			fmt.Fprintf(out, "%q is still the active profile\n", newLabel)
		}
		if cfg, err := config.LoadProfile(newLabel); err == nil {
			describeProfile(out, cfg)
		} else {
			fmt.Fprintf(out, "Warning: %v\n", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
