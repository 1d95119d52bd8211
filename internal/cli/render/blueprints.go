package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// BlueprintsRenderer renders the deployable contracts of the build output
type BlueprintsRenderer struct {
	out io.Writer
}

// NewBlueprintsRenderer creates a new blueprints renderer
func NewBlueprintsRenderer(out io.Writer) *BlueprintsRenderer {
	return &BlueprintsRenderer{out: out}
}

// RenderBlueprints renders one row per blueprint
func (r *BlueprintsRenderer) RenderBlueprints(blueprints []*models.Blueprint) error {
	if len(blueprints) == 0 {
		fmt.Fprintln(r.out, "No deployable contracts found, compile the project first")
		return nil
	}

	t := newTable("CONTRACT", "SOURCE", "CONSTRUCTOR", "SIZE", "")
	for _, b := range blueprints {
		status := ""
		if b.Stale {
			status = warnStyle.Sprint("stale")
		}

		t.AppendRow(table.Row{
			nameStyle.Sprint(b.Name),
			b.SourcePath,
			faintStyle.Sprint(b.ConstructorSignature()),
			fmt.Sprintf("%d B", len(b.Bytecode)),
			status,
		})
	}

	fmt.Fprintln(r.out, t.Render())
	return nil
}
