// Package render turns query results into text. Rendering is a pure function
// of options and result; there is no process-wide display mode.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/engine"
)

type Renderer struct {
	opts config.RenderConfig
}

func New(opts config.RenderConfig) *Renderer {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 10
	}
	if opts.MaxColWidth <= 0 {
		opts.MaxColWidth = 40
	}
	return &Renderer{opts: opts}
}

// Render formats a result. Scalars render bare, tables render boxed when
// Interactive, tab-separated otherwise.
func (r *Renderer) Render(res *engine.Result) string {
	if res == nil {
		return ""
	}
	if v, ok := res.Scalar(); ok {
		return formatValue(v) + "\n"
	}
	if r.opts.Interactive {
		return r.boxed(res)
	}
	return r.plain(res)
}

func (r *Renderer) boxed(res *engine.Result) string {
	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetColWidth(r.opts.MaxColWidth)

	shown := res.Rows
	truncated := 0
	if len(shown) > r.opts.MaxRows {
		truncated = len(shown) - r.opts.MaxRows
		shown = shown[:r.opts.MaxRows]
	}
	for _, row := range shown {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = clip(formatValue(v), r.opts.MaxColWidth)
		}
		table.Append(cells)
	}
	table.Render()

	if truncated > 0 {
		fmt.Fprintf(&sb, "… and %d more rows\n", truncated)
	}
	return sb.String()
}

func (r *Renderer) plain(res *engine.Result) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(res.Columns, "\t"))
	sb.WriteByte('\n')

	shown := res.Rows
	truncated := 0
	if len(shown) > r.opts.MaxRows {
		truncated = len(shown) - r.opts.MaxRows
		shown = shown[:r.opts.MaxRows]
	}
	for _, row := range shown {
		for i, v := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(formatValue(v))
		}
		sb.WriteByte('\n')
	}
	if truncated > 0 {
		fmt.Fprintf(&sb, "… and %d more rows\n", truncated)
	}
	return sb.String()
}

func formatValue(v any) string {
	switch vv := v.(type) {
	case nil:
		return "NULL"
	case string:
		return vv
	case []byte:
		return string(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case float64:
		return strconv.FormatFloat(vv, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(vv)
	default:
		return fmt.Sprintf("%v", vv)
	}
}

func clip(s string, width int) string {
	if width <= 1 || len(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
