package render

import (
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	headerStyle = color.New(color.Bold, color.FgHiWhite)
	nameStyle   = color.New(color.FgGreen, color.Bold)
	faintStyle  = color.New(color.Faint)
	activeStyle = color.New(color.FgCyan, color.Bold)
	warnStyle   = color.New(color.FgYellow)
)

// newTable returns a borderless table writer whose first row is a header
func newTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}

	if len(headers) > 0 {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			row[i] = headerStyle.Sprint(h)
		}
		t.AppendRow(row)
	}
	return t
}
