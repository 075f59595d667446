package render

import (
	"strings"
	"testing"

	"github.com/Sternrassler/artic-report/pkg/report"
)

func testData() *report.Data {
	return &report.Data{
		Spec: report.Spec{
			Name:     "impressionists",
			Search:   "monet",
			Fields:   []string{"id", "title"},
			MaxItems: 25,
		},
		Items: []report.Record{
			{"id": "1", "title": "Water Lilies"},
			{"id": "2", "title": "Haystacks"},
		},
		Count: 2,
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(testData(), "2026-08-29T12:00:00Z")
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}

	html := string(out)
	for _, want := range []string{
		"<title>impressionists</title>",
		"<th>id</th>",
		"<th>title</th>",
		"Water Lilies",
		"Haystacks",
		"Items: 2",
		"2026-08-29T12:00:00Z",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHTML_OnlyRequestedFields(t *testing.T) {
	data := testData()
	data.Items = []report.Record{
		{"id": "1", "title": "Water Lilies", "artist_title": "Claude Monet"},
	}

	out, err := HTML(data, "2026-08-29T12:00:00Z")
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}

	html := string(out)
	if strings.Contains(html, "Claude Monet") {
		t.Error("fields outside the spec must not render")
	}
	if !strings.Contains(html, "Water Lilies") {
		t.Error("requested field missing")
	}
}

func TestHTML_EscapesValues(t *testing.T) {
	data := testData()
	data.Items = []report.Record{
		{"id": "1", "title": `<script>alert("x")</script>`},
	}

	out, err := HTML(data, "2026-08-29T12:00:00Z")
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}

	html := string(out)
	if strings.Contains(html, "<script>") {
		t.Error("item values must be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}
}

func TestHTML_EmptyItems(t *testing.T) {
	data := testData()
	data.Items = nil
	data.Count = 0

	out, err := HTML(data, "2026-08-29T12:00:00Z")
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}

	html := string(out)
	if !strings.Contains(html, "No items matched this search.") {
		t.Error("empty dataset notice missing")
	}
	if strings.Contains(html, "<table>") {
		t.Error("empty dataset must not render a table")
	}
}

func TestHTML_MissingFieldTolerated(t *testing.T) {
	data := testData()
	data.Items = []report.Record{
		{"id": "1"}, // no title
	}

	if _, err := HTML(data, "2026-08-29T12:00:00Z"); err != nil {
		t.Fatalf("HTML() must tolerate missing fields: %v", err)
	}
}
