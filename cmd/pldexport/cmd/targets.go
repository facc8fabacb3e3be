package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List export targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSUFFIX\tDESCRIPTION")
		for _, t := range registry.Targets() {
			fmt.Fprintf(tw, "%s\t.%s\t%s\n", t.Name, t.Suffix, t.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
