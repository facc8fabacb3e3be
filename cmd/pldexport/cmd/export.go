package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePLD/internal/watch"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/export"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/truthtable"
)

var (
	targetName string
	outputPath string
	outputDir  string
	watchMode  bool
	normalize  bool
)

var exportCmd = &cobra.Command{
	Use:   "export PROJECT...",
	Short: "Export projects to a target format",
	Long: `Export one or more project files. Arguments may be doublestar patterns
such as 'designs/**/*.toml'. Each project is written next to its source with
the target's suffix unless -o or --out-dir is given.

Signals without a pin number are reported as warnings; the export still
succeeds if the target format tolerates them.

Examples:
  pldexport export counter.toml
  pldexport export counter.toml -t jed-pla22v10 -o build/counter.jed
  pldexport export 'designs/*.toml' --out-dir build --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&targetName, "target", "t", "",
		"target format (see 'pldexport targets'; default from config)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"output file (single project only)")
	exportCmd.Flags().StringVar(&outputDir, "out-dir", "",
		"directory for output files")
	exportCmd.Flags().BoolVarP(&watchMode, "watch", "w", false,
		"export again whenever a project file changes")
	exportCmd.Flags().BoolVar(&normalize, "normalize", false,
		"rewrite expressions to sum-of-products before emitting")
}

func runExport(cmd *cobra.Command, args []string) error {
	name := targetName
	if name == "" {
		name = cfg.DefaultTarget
	}
	target, err := registry.Lookup(name)
	if err != nil {
		return err
	}

	paths, err := expandProjects(args)
	if err != nil {
		return err
	}
	if outputPath != "" && len(paths) > 1 {
		return fmt.Errorf("-o needs a single project, got %d", len(paths))
	}

	if outputDir != "" {
		if err := fs.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	coord := export.NewCoordinator(fs, log)
	run := func(ctx context.Context, paths []string) error {
		reqs, err := buildRequests(paths, target)
		if err != nil {
			return err
		}
		return report(cmd, coord.Batch(ctx, reqs, cfg.Parallel))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := run(ctx, paths); err != nil && !watchMode {
		return err
	} else if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
	if !watchMode {
		return nil
	}

	w, err := watch.New(watch.Config{Files: paths}, log, func(changed []string) {
		if err := run(ctx, changed); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch projects: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d project(s), press Ctrl+C to stop\n", len(paths))
	return w.Run(ctx)
}

// expandProjects resolves patterns to a sorted, de-duplicated file list.
func expandProjects(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		matches := []string{arg}
		if strings.ContainsAny(arg, "*?[{") {
			m, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			if len(m) == 0 {
				return nil, fmt.Errorf("no project matches %q", arg)
			}
			matches = m
		}
		for _, p := range matches {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func buildRequests(paths []string, target export.Target) ([]export.Request, error) {
	var mod expr.Modifier
	if normalize {
		mod = expr.Normalize
	}
	reqs := make([]export.Request, 0, len(paths))
	for _, path := range paths {
		p, err := truthtable.LoadProject(path)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, export.Request{
			Table:       p.Table,
			Expressions: p.Expressions,
			Destination: destination(path, target),
			Target:      target,
			Modifier:    mod,
			Title:       cfg.Title,
		})
	}
	return reqs, nil
}

func destination(project string, target export.Target) string {
	if outputPath != "" {
		return outputPath
	}
	base := strings.TrimSuffix(filepath.Base(project), filepath.Ext(project)) + "." + target.Suffix
	if outputDir != "" {
		return filepath.Join(outputDir, base)
	}
	return filepath.Join(filepath.Dir(project), base)
}

// report prints one line per result and fails if any export failed.
func report(cmd *cobra.Command, results []export.Result) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
			fmt.Fprintf(errOut, "%s: %s: %v\n", res.Destination, res.Err.Kind, res.Err.Err)
			continue
		}
		fmt.Fprintf(out, "Wrote %s\n", res.Destination)
		if len(res.MissingPins) > 0 {
			fmt.Fprintf(errOut, "warning: %s: signals without pin number: %s\n",
				res.Destination, strings.Join(res.MissingPins, ", "))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d export(s) failed", failed, len(results))
	}
	return nil
}
