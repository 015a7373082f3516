package lesson_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dataquill/tutorkit/internal/errors"
	"github.com/dataquill/tutorkit/internal/lesson"
)

func writeLesson(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesson.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write lesson: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeLesson(t, `{
		"name": "custom",
		"title": "A custom lesson",
		"family": "penguins",
		"steps": [
			{"kind": "note", "text": "hello"},
			{"kind": "query", "sql": "SELECT 1", "save": "one"},
			{"kind": "query", "sql": "SELECT * FROM penguins", "columns": {"suffix": "_mm"}},
			{"kind": "expect_error", "sql": "SELECT nope", "error_contains": "no such column"},
			{"kind": "exercise", "exercise": "01", "inputs": ["one"]}
		]
	}`)

	l, err := lesson.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Name != "custom" || len(l.Steps) != 5 {
		t.Fatalf("unexpected lesson: %+v", l)
	}
	if l.Steps[2].Columns == nil || l.Steps[2].Columns.Suffix != "_mm" {
		t.Fatalf("selector not decoded: %+v", l.Steps[2])
	}
	if got := l.Steps[4].Inputs; len(got) != 1 || got[0] != "one" {
		t.Fatalf("inputs not decoded: %v", got)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{steps:`},
		{"no steps", `{"name": "x", "family": "f"}`},
		{"empty steps", `{"name": "x", "family": "f", "steps": []}`},
		{"unknown kind", `{"name": "x", "family": "f", "steps": [{"kind": "shrug"}]}`},
		{"unknown field", `{"name": "x", "family": "f", "steps": [{"kind": "note", "text": "t", "extra": 1}]}`},
		{"query without sql", `{"name": "x", "family": "f", "steps": [{"kind": "query"}]}`},
		{"expect_error without message", `{"name": "x", "family": "f", "steps": [{"kind": "expect_error", "sql": "SELECT 1"}]}`},
		{"exercise without identifier", `{"name": "x", "family": "f", "steps": [{"kind": "exercise"}]}`},
		{"note without text", `{"name": "x", "family": "f", "steps": [{"kind": "note"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLesson(t, tt.content)
			if _, err := lesson.Load(path); !errors.Is(err, errors.ErrLessonInvalid) {
				t.Fatalf("want ErrLessonInvalid, got %v", err)
			}
		})
	}
}

func TestBuiltinLessonsAreValid(t *testing.T) {
	builtin := lesson.Builtin()
	if len(builtin) == 0 {
		t.Fatal("no built-in lessons")
	}
	for name, l := range builtin {
		if err := l.Validate(); err != nil {
			t.Errorf("built-in %s invalid: %v", name, err)
		}
		if l.Family == "" {
			t.Errorf("built-in %s has no dataset family", name)
		}
		if name != l.Name {
			t.Errorf("built-in keyed %s but named %s", name, l.Name)
		}
	}
}

func TestFind(t *testing.T) {
	if _, err := lesson.Find("penguins-basics"); err != nil {
		t.Fatalf("Find(penguins-basics): %v", err)
	}
	if _, err := lesson.Find("nope"); !errors.Is(err, errors.ErrLessonUnknown) {
		t.Fatalf("want ErrLessonUnknown, got %v", err)
	}
}
