package cmd

import (
	"fmt"
	"strings"

	"github.com/brogergvhs/pollsmooth/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var flagFrom string

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config, from defaults or an existing YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Label for new config",
				Validate: func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("label cannot be empty")
					}
					return nil
				},
			}
			var err error
			if label, err = prompt.Run(); err != nil {
				return fmt.Errorf("cancelled")
			}
			label = strings.TrimSpace(label)
		}

		if flagFrom != "" {
			if err := config.AddConfig(label, flagFrom); err != nil {
				return err
			}
			fmt.Printf("Imported %s as config %q\n", flagFrom, label)
			return nil
		}

		path, err := config.CreateEmptyConfig(label)
		if err != nil {
			return err
		}
		fmt.Printf("Created new config: %s\n", path)
		return nil
	},
}

func init() {
	configAddCmd.Flags().StringVar(&flagFrom, "from", "", "copy settings from this YAML file")
	configCmd.AddCommand(configAddCmd)
}
