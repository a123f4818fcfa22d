package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRendering(t *testing.T) {
	d := QueryDescriptor{
		Name:    "even",
		Columns: []Column{{Source: "id", Type: TypeInt}, {Source: "metric_int1", Type: TypeInt}},
		Where:   "id % 2 = 0",
		OrderBy: "metric_int1",
	}
	assert.Equal(t, "SELECT id, metric_int1 FROM metrics WHERE id % 2 = 0 ORDER BY metric_int1", d.Query())
}

func TestRelabeledColumnsStayAligned(t *testing.T) {
	d := QueryDescriptor{
		Name: "projected",
		Columns: []Column{
			{Source: "id", Type: TypeInt},
			{Source: "metric_int2", Target: "metric_int1", Type: TypeInt},
			{Source: "parity", Expr: "CASE WHEN id % 2 = 0 THEN 'even' ELSE 'odd' END", Target: "metric_string", Type: TypeText},
		},
	}
	require.NoError(t, d.Validate())

	assert.Equal(t, []string{"id", "metric_int2", "parity"}, d.Sources())
	assert.Equal(t, []string{"id", "metric_int1", "metric_string"}, d.Targets())
	assert.Equal(t,
		"SELECT id, metric_int2, CASE WHEN id % 2 = 0 THEN 'even' ELSE 'odd' END AS parity FROM metrics",
		d.Query())
	assert.True(t, d.HasTarget("metric_string"))
	assert.False(t, d.HasTarget("metric_int2"))
}

func TestValidate(t *testing.T) {
	cases := map[string]QueryDescriptor{
		"no name":          {Columns: MetricColumns()},
		"no columns":       {Name: "x"},
		"bad identifier":   {Name: "x", Columns: []Column{{Source: "id; DROP", Type: TypeInt}}},
		"unknown type":     {Name: "x", Columns: []Column{{Source: "id", Type: "uuid"}}},
		"duplicate source": {Name: "x", Columns: []Column{{Source: "id", Type: TypeInt}, {Source: "id", Target: "metric_int1", Type: TypeInt}}},
		"duplicate target": {Name: "x", Columns: []Column{{Source: "id", Type: TypeInt}, {Source: "metric_int1", Target: "id", Type: TypeInt}}},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, d.Validate())
		})
	}

	assert.NoError(t, QueryDescriptor{Name: "full", Columns: MetricColumns()}.Validate())
}

func TestLoadDescriptors(t *testing.T) {
	data := []byte(`[
		{"name": "ids", "columns": [{"source": "id", "type": "int"}], "where": "id < 10"},
		{"name": "relabel", "columns": [{"source": "metric_int2", "target": "metric_int1", "type": "int"}]}
	]`)

	ds, err := LoadDescriptors(data)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "SELECT id FROM metrics WHERE id < 10", ds[0].Query())
	assert.Equal(t, []string{"metric_int1"}, ds[1].Targets())

	_, err = LoadDescriptors([]byte(`[{"name": "bad", "columns": []}]`))
	assert.Error(t, err)

	_, err = LoadDescriptors([]byte(`{`))
	assert.Error(t, err)
}

func TestTransferResultRate(t *testing.T) {
	r := TransferResult{Rows: 500, Elapsed: 2_000_000_000}
	assert.InDelta(t, 250.0, r.Rate(), 1e-9)
	assert.True(t, r.Succeeded())
	assert.Zero(t, TransferResult{Rows: 5}.Rate())
}
