package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/jedec"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/truthtable"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/verify"
)

var (
	verifyProject string
	verifyDevice  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Check an exported file against its project",
	Long: `Read a .tt2 or .jed file back and evaluate it against the project's
expressions over every input combination. JEDEC files name their device; use
--device to override it.

Examples:
  pldexport verify counter.tt2 --project counter.toml
  pldexport verify counter.jed -p counter.toml --device PLA22V10`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyProject, "project", "p", "", "project file the artifact was exported from")
	verifyCmd.Flags().StringVarP(&verifyDevice, "device", "d", "", "device of a JEDEC file (default: from the file)")
	verifyCmd.MarkFlagRequired("project")
}

func runVerify(cmd *cobra.Command, args []string) error {
	file := args[0]
	project, err := truthtable.LoadProject(verifyProject)
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	var rep *verify.Report
	switch strings.ToLower(filepath.Ext(file)) {
	case ".tt2":
		rep, err = verify.TT2(bytes.NewReader(data), project)
	case ".jed":
		name := verifyDevice
		if name == "" {
			f, err := jedec.Parse(bytes.NewReader(data))
			if err != nil {
				return err
			}
			name = f.Device
		}
		dev, lookupErr := catalog.Lookup(name)
		if lookupErr != nil {
			return lookupErr
		}
		rep, err = verify.JEDEC(bytes.NewReader(data), dev, project)
	default:
		return fmt.Errorf("unknown file type %q (want .tt2 or .jed)", filepath.Ext(file))
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !rep.OK() {
		for _, m := range rep.Mismatches {
			fmt.Fprintf(out, "  %s\n", m)
		}
		if rep.Failures > len(rep.Mismatches) {
			fmt.Fprintf(out, "  ... %d more\n", rep.Failures-len(rep.Mismatches))
		}
		return fmt.Errorf("%s does not match %s: %d mismatch(es)", file, verifyProject, rep.Failures)
	}
	fmt.Fprintf(out, "%s matches %s (%d assignments of %s)\n",
		file, verifyProject, rep.Assignments, strings.Join(rep.Variables, " "))
	return nil
}
