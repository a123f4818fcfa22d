package dataset

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/BartekS5/copybench/pkg/models"
)

var table = pq.QuoteIdentifier(models.MetricsTable)

var createTableSQL = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	metric_int1 INTEGER,
	metric_int2 INTEGER,
	metric_float1 DOUBLE PRECISION,
	metric_float2 DOUBLE PRECISION,
	metric_string VARCHAR,
	metric_binary BYTEA
)`, table)

var (
	dropTableSQL     = "DROP TABLE IF EXISTS " + table
	truncateTableSQL = "TRUNCATE " + table
	hasRowsSQL       = "SELECT EXISTS (SELECT 1 FROM " + table + ")"
	countRowsSQL     = "SELECT count(*) FROM " + table
)
