// Package lesson models tutorial notebooks as ordered step sequences and
// executes them against a bootstrapped connection.
package lesson

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dataquill/tutorkit/internal/engine"
	"github.com/dataquill/tutorkit/internal/errors"
)

type StepKind string

const (
	// StepNote is narrative only.
	StepNote StepKind = "note"
	// StepExec runs a statement without rendering a result.
	StepExec StepKind = "exec"
	// StepQuery runs a query and renders the result.
	StepQuery StepKind = "query"
	// StepExpectError runs an operation that is documented to fail; the
	// failure is printed and the lesson continues. This is the only step
	// kind that swallows an error.
	StepExpectError StepKind = "expect_error"
	// StepExercise loads and runs an external solution script.
	StepExercise StepKind = "exercise"
)

// Step is one unit of a lesson: narrative text plus either an inline
// operation or an exercise reference. A step has no identity beyond its
// position.
type Step struct {
	Kind StepKind `json:"kind"`
	Text string   `json:"text,omitempty"`
	SQL  string   `json:"sql,omitempty"`

	// Save materializes the query result as a temp table under this name.
	// Later steps may refer to it, or to "_", which always names the most
	// recently saved result.
	Save string `json:"save,omitempty"`

	// Columns optionally projects the rendered result.
	Columns *engine.Selector `json:"columns,omitempty"`

	// ErrorContains is the documented failure kind for expect_error steps.
	ErrorContains string `json:"error_contains,omitempty"`

	// Exercise is the exercise identifier; Inputs names the saved results
	// the solution requires, checked before it runs.
	Exercise string   `json:"exercise,omitempty"`
	Inputs   []string `json:"inputs,omitempty"`
}

type Lesson struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Family string `json:"family"`
	Steps  []Step `json:"steps"`
}

const lessonSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "family", "steps"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"title": {"type": "string"},
		"family": {"type": "string", "minLength": 1},
		"steps": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["kind"],
				"properties": {
					"kind": {"enum": ["note", "exec", "query", "expect_error", "exercise"]},
					"text": {"type": "string"},
					"sql": {"type": "string"},
					"save": {"type": "string"},
					"columns": {"type": "object"},
					"error_contains": {"type": "string"},
					"exercise": {"type": "string"},
					"inputs": {"type": "array", "items": {"type": "string"}}
				},
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

// Load reads a lesson file, validates it against the schema, and checks the
// per-kind field requirements the schema cannot express.
func Load(path string) (*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lesson: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(lessonSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrLessonInvalid, err)
	}
	if !result.Valid() {
		msg := ""
		for _, desc := range result.Errors() {
			msg += "; " + desc.String()
		}
		return nil, fmt.Errorf("%w%s", errors.ErrLessonInvalid, msg)
	}

	var l Lesson
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrLessonInvalid, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate enforces the per-kind invariants.
func (l *Lesson) Validate() error {
	for i, s := range l.Steps {
		switch s.Kind {
		case StepNote:
			if s.Text == "" {
				return fmt.Errorf("%w: step %d: note without text", errors.ErrLessonInvalid, i)
			}
		case StepExec, StepQuery:
			if s.SQL == "" {
				return fmt.Errorf("%w: step %d: %s without sql", errors.ErrLessonInvalid, i, s.Kind)
			}
		case StepExpectError:
			if s.SQL == "" || s.ErrorContains == "" {
				return fmt.Errorf("%w: step %d: expect_error needs sql and error_contains",
					errors.ErrLessonInvalid, i)
			}
		case StepExercise:
			if s.Exercise == "" {
				return fmt.Errorf("%w: step %d: exercise without identifier", errors.ErrLessonInvalid, i)
			}
		default:
			return fmt.Errorf("%w: step %d: unknown kind %q", errors.ErrLessonInvalid, i, s.Kind)
		}
	}
	return nil
}
