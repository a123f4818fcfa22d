package models

// MetricsTable is the table both stores agree on.
const MetricsTable = "metrics"

// IdentityColumn is the store-assigned primary key of MetricsTable.
const IdentityColumn = "id"

// MetricRecord is the canonical row shape of the metrics table.
type MetricRecord struct {
	ID     int64
	Int1   int32
	Int2   int32
	Float1 float64
	Float2 float64
	String string
	Binary []byte
}

// MetricColumns returns the full column list of the metrics table.
func MetricColumns() []Column {
	return []Column{
		{Source: "id", Type: TypeInt},
		{Source: "metric_int1", Type: TypeInt},
		{Source: "metric_int2", Type: TypeInt},
		{Source: "metric_float1", Type: TypeFloat},
		{Source: "metric_float2", Type: TypeFloat},
		{Source: "metric_string", Type: TypeText},
		{Source: "metric_binary", Type: TypeBytes},
	}
}

// InsertColumns lists the columns a client writes when populating the
// table; the identity is left to the store.
func InsertColumns() []string {
	return []string{"metric_int1", "metric_int2", "metric_float1", "metric_float2", "metric_string", "metric_binary"}
}

// Values returns the client-written fields in InsertColumns order.
func (r MetricRecord) Values() []interface{} {
	return []interface{}{r.Int1, r.Int2, r.Float1, r.Float2, r.String, r.Binary}
}
