package etl

import (
	"fmt"

	"github.com/BartekS5/copybench/pkg/models"
	"github.com/BartekS5/copybench/pkg/utils"
)

// Mapper projects source rows onto destination records using the
// descriptor's resolved column triples.
type Mapper struct {
	Columns   []models.Column
	validator *Validator
}

func NewMapper(d models.QueryDescriptor) *Mapper {
	return &Mapper{
		Columns:   d.Columns,
		validator: NewValidator(d.Targets()),
	}
}

// MapRow turns a positional source row into destination column -> value.
func (m *Mapper) MapRow(row []interface{}) (map[string]interface{}, error) {
	if len(row) != len(m.Columns) {
		return nil, fmt.Errorf("%w: row has %d values, expected %d", ErrMapping, len(row), len(m.Columns))
	}

	record := make(map[string]interface{}, len(m.Columns))
	for i, col := range m.Columns {
		converted, err := utils.ConvertToColumnType(row[i], col.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: column %s: %w", ErrMapping, col.Source, err)
		}
		record[col.Destination()] = converted
	}
	if err := m.validator.ValidateRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (m *Mapper) MapChunk(rows [][]interface{}) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		record, err := m.MapRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}
