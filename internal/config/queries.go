package config

import (
	"fmt"
	"os"

	"github.com/BartekS5/copybench/pkg/models"
)

// DefaultQueries returns the four query shapes compared by the benchmark:
// a full scan, a filtered scan, an ordered scan and a projection that
// relabels one column and derives another.
func DefaultQueries() []models.QueryDescriptor {
	return []models.QueryDescriptor{
		{
			Name:    "full-scan",
			Columns: models.MetricColumns(),
		},
		{
			Name:    "even-ids",
			Columns: models.MetricColumns(),
			Where:   "id % 2 = 0",
		},
		{
			Name:    "ordered",
			Columns: models.MetricColumns(),
			OrderBy: "metric_int1",
		},
		{
			Name: "projected",
			Columns: []models.Column{
				{Source: "id", Type: models.TypeInt},
				{Source: "metric_int2", Target: "metric_int1", Type: models.TypeInt},
				{
					Source: "parity",
					Expr:   "CASE WHEN metric_int1 % 2 = 0 THEN 'even' ELSE 'odd' END",
					Target: "metric_string",
					Type:   models.TypeText,
				},
			},
		},
	}
}

// LoadQueries reads a JSON array of query descriptors from filePath. An
// empty path yields DefaultQueries.
func LoadQueries(filePath string) ([]models.QueryDescriptor, error) {
	if filePath == "" {
		return DefaultQueries(), nil
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries file '%s': %w", filePath, err)
	}

	queries, err := models.LoadDescriptors(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries file '%s': %w", filePath, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("queries file '%s' defines no queries", filePath)
	}
	return queries, nil
}
