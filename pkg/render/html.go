// Package render turns assembled report data into HTML and PDF artifacts.
// HTML comes from an embedded autoescaped template; PDF rasterization runs
// through headless Chrome.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/Sternrassler/artic-report/pkg/report"
)

//go:embed report-template.html
var reportTemplate string

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

// Context is the data handed to the report template.
type Context struct {
	GeneratedAt string
	Report      report.Spec
	Items       []report.Record
	Count       int
}

// HTML renders the report template for the given data.
func HTML(data *report.Data, generatedAt string) ([]byte, error) {
	ctx := Context{
		GeneratedAt: generatedAt,
		Report:      data.Spec,
		Items:       data.Items,
		Count:       data.Count,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("render report template: %w", err)
	}
	return buf.Bytes(), nil
}
