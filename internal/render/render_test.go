package render_test

import (
	"strings"
	"testing"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/engine"
	"github.com/dataquill/tutorkit/internal/render"
)

func result(rows int) *engine.Result {
	res := &engine.Result{Columns: []string{"species", "mass"}}
	for i := 0; i < rows; i++ {
		res.Rows = append(res.Rows, []any{"Adelie", int64(3700 + i)})
	}
	return res
}

func TestRenderScalarIsBare(t *testing.T) {
	r := render.New(config.RenderConfig{Interactive: true})
	res := &engine.Result{Columns: []string{"n"}, Rows: [][]any{{int64(42)}}}
	if got := r.Render(res); got != "42\n" {
		t.Fatalf("scalar = %q, want %q", got, "42\n")
	}
}

func TestRenderPlain(t *testing.T) {
	r := render.New(config.RenderConfig{Interactive: false, MaxRows: 10})
	got := r.Render(result(2))
	want := "species\tmass\nAdelie\t3700\nAdelie\t3701\n"
	if got != want {
		t.Fatalf("plain = %q, want %q", got, want)
	}
}

func TestRenderBoxed(t *testing.T) {
	r := render.New(config.RenderConfig{Interactive: true, MaxRows: 10})
	got := r.Render(result(2))
	if !strings.Contains(got, "species") || !strings.Contains(got, "Adelie") {
		t.Fatalf("boxed output missing content:\n%s", got)
	}
	if !strings.Contains(got, "+") && !strings.Contains(got, "|") {
		t.Fatalf("boxed output has no borders:\n%s", got)
	}
}

func TestRenderTruncation(t *testing.T) {
	for _, interactive := range []bool{true, false} {
		r := render.New(config.RenderConfig{Interactive: interactive, MaxRows: 3})
		got := r.Render(result(10))
		if !strings.Contains(got, "7 more rows") {
			t.Errorf("interactive=%v: truncation footer missing:\n%s", interactive, got)
		}
		if strings.Count(got, "Adelie") != 3 {
			t.Errorf("interactive=%v: want 3 rendered rows:\n%s", interactive, got)
		}
	}
}

func TestRenderNullAndFloats(t *testing.T) {
	r := render.New(config.RenderConfig{Interactive: false, MaxRows: 10})
	res := &engine.Result{
		Columns: []string{"a", "b"},
		Rows:    [][]any{{nil, 3.75}},
	}
	got := r.Render(res)
	if !strings.Contains(got, "NULL") || !strings.Contains(got, "3.75") {
		t.Fatalf("formatting wrong: %q", got)
	}
}

func TestRenderNil(t *testing.T) {
	r := render.New(config.RenderConfig{})
	if got := r.Render(nil); got != "" {
		t.Fatalf("nil result rendered %q", got)
	}
}
