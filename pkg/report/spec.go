// Package report assembles artwork datasets for one report definition:
// paginated search for matching ids followed by chunked detail fetching.
package report

import (
	"slices"
)

// DefaultFields is the field set requested when a spec names none.
var DefaultFields = []string{"id", "title", "artist_title", "date_display"}

// DefaultMaxItems is the item cap applied when a spec names none.
const DefaultMaxItems = 25

// Spec is the declarative description of one report: what to search for,
// which fields to fetch, and how many items to include. Immutable for the
// duration of one fetch.
type Spec struct {
	Name       string   `yaml:"name" json:"name"`
	Search     string   `yaml:"search" json:"search"`
	Fields     []string `yaml:"fields" json:"fields"`
	MaxItems   int      `yaml:"max_items" json:"max_items"`
	Recipients []string `yaml:"recipients,omitempty" json:"-"`
}

// Normalize returns a copy of the spec with missing fields replaced by their
// documented defaults. All defaulting happens here, at the boundary, so the
// fetch stages can assume a fully populated spec.
func (s Spec) Normalize() Spec {
	out := s
	if out.Name == "" {
		out.Name = "report"
	}
	if len(out.Fields) == 0 {
		out.Fields = slices.Clone(DefaultFields)
	}
	if out.MaxItems < 1 {
		out.MaxItems = DefaultMaxItems
	}
	return out
}

// Record is one fetched item, shaped by the spec's field list.
type Record map[string]any

// Data is the assembled output of one report fetch: the effective spec, the
// fetched items, and their count. Created once and never mutated afterwards.
//
// Count always equals len(Items) and reflects what the detail stage actually
// returned. When the API returns fewer details than ids were requested (e.g.
// some ids no longer resolve), the shortfall is not an error; Count simply
// reports the smaller number.
type Data struct {
	Spec  Spec     `json:"report"`
	Items []Record `json:"items"`
	Count int      `json:"count"`
}
