// Package batch drives one run of the report pipeline: load the declarative
// query file, process each report strictly sequentially, write artifacts, and
// record a summary. One report's failure never aborts the batch.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/artic-report/pkg/report"
)

// QueryFile is the parsed batch configuration.
type QueryFile struct {
	Reports []report.Spec `yaml:"reports"`
}

// LoadQueries reads and validates a YAML query file. The root key "reports"
// must be a list; an empty or missing list is an error because a batch with
// nothing to do is almost certainly a misconfiguration.
func LoadQueries(path string) ([]report.Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query file: %w", err)
	}

	var qf QueryFile
	if err := yaml.Unmarshal(raw, &qf); err != nil {
		return nil, fmt.Errorf("parse query file: %w", err)
	}

	if len(qf.Reports) == 0 {
		return nil, fmt.Errorf("no reports defined in %s", path)
	}
	return qf.Reports, nil
}
