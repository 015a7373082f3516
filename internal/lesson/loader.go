package lesson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dataquill/tutorkit/internal/errors"
)

// runExercise locates the external solution script for an exercise, checks
// that every declared input exists, and executes the script inside a
// savepoint so it cannot disturb the state later exercises depend on.
//
// Solutions are one SQL statement per file, named <lesson>_<exercise>.sql.
// A missing or empty script is fatal; there is no inferred solution. Inputs
// are explicit: the script sees only the tables named in the step, never
// ambient state it did not declare.
func (r *Runner) runExercise(ctx context.Context, l *Lesson, step Step, pos int) error {
	path := filepath.Join(r.solutionsDir, fmt.Sprintf("%s_%s.sql", l.Name, step.Exercise))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", errors.ErrSolutionMissing, path)
		}
		return fmt.Errorf("read solution: %w", err)
	}

	query := strings.TrimSpace(string(data))
	if query == "" {
		return fmt.Errorf("%w: %s", errors.ErrSolutionEmpty, path)
	}

	for _, input := range step.Inputs {
		ok, err := r.db.TableExists(ctx, input)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: exercise %s needs %q", errors.ErrInputMissing, step.Exercise, input)
		}
	}

	sp := fmt.Sprintf("exercise_%d", pos)
	if err := r.db.Exec(ctx, "SAVEPOINT "+sp); err != nil {
		return err
	}

	res, err := r.db.Query(ctx, query)
	if err != nil {
		r.db.Exec(ctx, "ROLLBACK TO "+sp)
		r.db.Exec(ctx, "RELEASE "+sp)
		return fmt.Errorf("solution %s: %w", path, err)
	}

	// The result is already materialized, so undo the script's side effects
	// before releasing. RELEASE alone keeps them: it commits the savepoint
	// rather than discarding it, and a mutating solution would clobber the
	// tables later exercises declare as inputs.
	if err := r.db.Exec(ctx, "ROLLBACK TO "+sp); err != nil {
		return err
	}
	if err := r.db.Exec(ctx, "RELEASE "+sp); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.ExercisesTotal.Inc()
	}

	fmt.Fprintf(r.out, "exercise %s:\n", step.Exercise)
	fmt.Fprint(r.out, r.renderer.Render(res))
	fmt.Fprintln(r.out)
	return nil
}
