package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dataquill/tutorkit/internal/lesson"
	"github.com/dataquill/tutorkit/internal/pypi"
	"github.com/dataquill/tutorkit/internal/render"
)

func lessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List available lessons",
		RunE: func(cmd *cobra.Command, args []string) error {
			builtin := lesson.Builtin()
			for _, name := range lesson.BuiltinNames() {
				fmt.Printf("%-18s %s\n", name, builtin[name].Title)
			}
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var (
		solutionsDir string
		plain        bool
		maxRows      int
	)

	cmd := &cobra.Command{
		Use:   "run <lesson>",
		Short: "Run a lesson from start to finish",
		Long: "Runs a built-in lesson by name, or a lesson file by path.\n" +
			"Datasets are fetched on demand; results render as they are produced.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			l, err := resolveLesson(args[0])
			if err != nil {
				return err
			}

			db, err := a.boot.Open(cmd.Context(), l.Family)
			if err != nil {
				return err
			}
			defer db.Close()

			// The pypi lessons call UDFs backed by the metadata service.
			if l.Family == "pypi" {
				client := pypi.NewClient(a.cfg.PyPI, a.log)
				if err := client.RegisterUDFs(); err != nil {
					return err
				}
			}

			ropts := a.cfg.Render
			if plain {
				ropts.Interactive = false
			}
			if maxRows > 0 {
				ropts.MaxRows = maxRows
			}

			runID := uuid.NewString()
			rlog := a.log.With("run=" + runID)

			runner := lesson.NewRunner(db, render.New(ropts), os.Stdout, rlog, lesson.RunnerOptions{
				SolutionsDir: solutionsDir,
				QueryTimeout: a.cfg.Engine.QueryTimeout,
				Metrics:      a.metrics,
			})

			rlog.Info("lesson %s (family %s)", l.Name, l.Family)
			runErr := runner.Run(cmd.Context(), l)

			if a.metrics != nil {
				if path, err := a.metrics.WriteSnapshot(a.cfg.MetricsDir(), runID); err != nil {
					rlog.Warn("metrics snapshot failed: %v", err)
				} else {
					rlog.Info("metrics snapshot: %s", path)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&solutionsDir, "solutions", "solutions", "directory holding exercise solution scripts")
	cmd.Flags().BoolVar(&plain, "plain", false, "plain tab-separated output instead of boxed tables")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "rows to show before truncating (0 = configured default)")
	return cmd
}

// resolveLesson treats the argument as a built-in lesson name first, then as
// a lesson file path.
func resolveLesson(arg string) (*lesson.Lesson, error) {
	if l, err := lesson.Find(arg); err == nil {
		return l, nil
	}
	if strings.HasSuffix(arg, ".json") {
		return lesson.Load(arg)
	}
	if _, err := os.Stat(arg); err == nil {
		return lesson.Load(arg)
	}
	return nil, fmt.Errorf("no such lesson %q; try `tutorkit lessons`", arg)
}
