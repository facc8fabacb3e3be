package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices [NAME]",
	Short: "List devices or show one device layout",
	Long: `List the built-in devices and those loaded with --catalog. With a
device name, print its pin assignment and fuse layout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		dev, err := catalog.Lookup(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Device: %s\n", dev.Name)
		if dev.Description != "" {
			fmt.Fprintf(out, "  %s\n", dev.Description)
		}
		fmt.Fprintf(out, "Package pins: %d\n", dev.Package)
		fmt.Fprintf(out, "Clock pin:    %d\n", dev.ClockPin)
		fmt.Fprintf(out, "Input pins:   %v\n", dev.InputPins())
		fmt.Fprintf(out, "Array:        %d rows x %d columns\n", dev.Rows(), dev.Columns())
		fmt.Fprintf(out, "Fuses:        %d\n", dev.FuseCount())
		fmt.Fprintln(out, "\nCells:")
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  PIN\tTERMS\tREGISTER\tFIRST ROW")
		for i, c := range dev.Cells {
			fmt.Fprintf(tw, "  %d\t%d\t%v\t%d\n", c.Pin, c.Terms, c.Registrable, dev.FirstRow(i))
		}
		return tw.Flush()
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPINS\tINPUTS\tOUTPUTS\tFUSES\tDESCRIPTION")
	for _, dev := range catalog.Devices() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			dev.Name, dev.Package, len(dev.Inputs), len(dev.Cells), dev.FuseCount(), dev.Description)
	}
	return tw.Flush()
}
