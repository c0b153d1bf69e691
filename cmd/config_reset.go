package cmd

import (
	"fmt"

	"github.com/brogergvhs/pollsmooth/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the current config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		activePath, err := config.ActiveConfigPath()
		if err != nil {
			return fmt.Errorf("%w; run `pollsmooth config init` first", err)
		}

		if !forceRemove && !confirm("Overwrite "+activePath+" with defaults") {
			fmt.Println("Aborted.")
			return nil
		}

		if err := config.SaveYAML(config.DefaultConfig(), activePath); err != nil {
			return err
		}

		fmt.Printf("Reset active config: %s\n", activePath)
		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "do not ask for confirmation")
	configCmd.AddCommand(configResetCmd)
}
