package lesson

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dataquill/tutorkit/internal/engine"
	"github.com/dataquill/tutorkit/internal/errors"
	"github.com/dataquill/tutorkit/internal/logger"
	"github.com/dataquill/tutorkit/internal/metrics"
	"github.com/dataquill/tutorkit/internal/render"
)

// lastResultName is the deferred operator: it always names the most recently
// saved step result.
const lastResultName = "_"

// Runner executes a lesson's steps strictly in document order against one
// connection. The first error halts the run, except inside expect_error
// steps, where the documented failure is printed and execution continues.
type Runner struct {
	db           *engine.DB
	renderer     *render.Renderer
	out          io.Writer
	log          *logger.Logger
	metrics      *metrics.Metrics
	solutionsDir string
	queryTimeout time.Duration
}

type RunnerOptions struct {
	SolutionsDir string
	QueryTimeout time.Duration
	Metrics      *metrics.Metrics
}

func NewRunner(db *engine.DB, renderer *render.Renderer, out io.Writer, log *logger.Logger, opts RunnerOptions) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	if opts.SolutionsDir == "" {
		opts.SolutionsDir = "solutions"
	}
	return &Runner{
		db:           db,
		renderer:     renderer,
		out:          out,
		log:          log,
		metrics:      opts.Metrics,
		solutionsDir: opts.SolutionsDir,
		queryTimeout: opts.QueryTimeout,
	}
}

func (r *Runner) Run(ctx context.Context, l *Lesson) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if l.Title != "" {
		fmt.Fprintf(r.out, "== %s ==\n\n", l.Title)
	}

	for i, step := range l.Steps {
		start := time.Now()
		err := r.runStep(ctx, l, step, i)
		r.record(step.Kind, err, time.Since(start))
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Kind, err)
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, l *Lesson, step Step, pos int) error {
	if step.Text != "" {
		fmt.Fprintf(r.out, "%s\n", step.Text)
	}

	ctx, cancel := r.stepContext(ctx)
	defer cancel()

	switch step.Kind {
	case StepNote:
		fmt.Fprintln(r.out)
		return nil

	case StepExec:
		return r.db.Exec(ctx, step.SQL)

	case StepQuery:
		return r.runQuery(ctx, step)

	case StepExpectError:
		return r.runExpectError(ctx, step)

	case StepExercise:
		return r.runExercise(ctx, l, step, pos)
	}
	return fmt.Errorf("%w: step %d: unknown kind %q", errors.ErrLessonInvalid, pos, step.Kind)
}

func (r *Runner) runQuery(ctx context.Context, step Step) error {
	var res *engine.Result
	var err error

	if step.Save != "" {
		if err = r.materialize(ctx, step.Save, step.SQL); err != nil {
			return err
		}
		res, err = r.db.Query(ctx, "SELECT * FROM "+quoteIdent(step.Save))
	} else {
		res, err = r.db.Query(ctx, step.SQL)
	}
	if err != nil {
		return err
	}

	if step.Columns != nil {
		if res, err = step.Columns.Apply(res); err != nil {
			return err
		}
	}

	fmt.Fprint(r.out, r.renderer.Render(res))
	fmt.Fprintln(r.out)
	return nil
}

// materialize stores a step result as a temp table and repoints "_" at it.
func (r *Runner) materialize(ctx context.Context, name, query string) error {
	if err := r.db.Exec(ctx, fmt.Sprintf("CREATE TEMP TABLE %s AS %s", quoteIdent(name), query)); err != nil {
		return err
	}
	if name == lastResultName {
		return nil
	}
	if err := r.db.Exec(ctx, `DROP TABLE IF EXISTS temp."_"`); err != nil {
		return err
	}
	return r.db.Exec(ctx, fmt.Sprintf(`CREATE TEMP TABLE "_" AS SELECT * FROM %s`, quoteIdent(name)))
}

// runExpectError requires the operation to fail with the documented kind of
// error, prints the message, and lets the lesson continue. An unexpected
// success, or a failure of a different kind, halts the run.
func (r *Runner) runExpectError(ctx context.Context, step Step) error {
	_, err := r.db.Query(ctx, step.SQL)
	if err == nil {
		return fmt.Errorf("%w: %q", errors.ErrExpectedFailure, step.SQL)
	}
	if !strings.Contains(err.Error(), step.ErrorContains) {
		return fmt.Errorf("%w: want %q, got: %v", errors.ErrWrongFailure, step.ErrorContains, err)
	}
	fmt.Fprintf(r.out, "error (expected): %v\n\n", err)
	return nil
}

func (r *Runner) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout > 0 {
		return context.WithTimeout(ctx, r.queryTimeout)
	}
	return ctx, func() {}
}

func (r *Runner) record(kind StepKind, err error, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.metrics.StepsTotal.WithLabelValues(string(kind), status).Inc()
	r.metrics.StepDuration.Observe(elapsed.Seconds())
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
