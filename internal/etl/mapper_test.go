package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/copybench/pkg/models"
)

func projectedDescriptor() models.QueryDescriptor {
	return models.QueryDescriptor{
		Name: "projected",
		Columns: []models.Column{
			{Source: "id", Type: models.TypeInt},
			{Source: "metric_int2", Target: "metric_int1", Type: models.TypeInt},
			{Source: "parity", Expr: "CASE WHEN id % 2 = 0 THEN 'even' ELSE 'odd' END", Target: "metric_string", Type: models.TypeText},
		},
	}
}

func TestMapRowRelabels(t *testing.T) {
	m := NewMapper(projectedDescriptor())

	record, err := m.MapRow([]interface{}{int64(4), int64(-17), []byte("even")})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"id":            int64(4),
		"metric_int1":   int64(-17),
		"metric_string": "even",
	}, record)
}

func TestMapRowWrongWidth(t *testing.T) {
	m := NewMapper(projectedDescriptor())

	_, err := m.MapRow([]interface{}{int64(4)})
	assert.ErrorIs(t, err, ErrMapping)
}

func TestMapRowBadValue(t *testing.T) {
	m := NewMapper(projectedDescriptor())

	_, err := m.MapRow([]interface{}{"four", int64(1), "odd"})
	assert.ErrorIs(t, err, ErrMapping)
}

func TestMapChunk(t *testing.T) {
	m := NewMapper(projectedDescriptor())

	records, err := m.MapChunk([][]interface{}{
		{int64(4), int64(1), "even"},
		{int64(5), int64(2), "odd"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "odd", records[1]["metric_string"])
}

func TestValidateColumns(t *testing.T) {
	v := NewValidator([]string{"id", "metric_int1"})

	assert.NoError(t, v.ValidateColumns([]string{"id", "metric_int1"}))
	assert.ErrorIs(t, v.ValidateColumns([]string{"metric_int1", "id"}), ErrMapping)
	assert.ErrorIs(t, v.ValidateColumns([]string{"id"}), ErrMapping)
}
