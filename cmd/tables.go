package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables found on the poll page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := newRun(cmd)
			if err != nil {
				return err
			}
			defer r.finish()

			tables, err := r.tables(cmd.Context())
			if err != nil {
				return err
			}

			for i, t := range tables {
				fmt.Fprintln(r.out, describeTable(i, t))
			}
			return nil
		},
	}

	addSourceFlags(tablesCmd)
	rootCmd.AddCommand(tablesCmd)
}
