package utils

import (
	"fmt"
	"strconv"

	"github.com/BartekS5/copybench/pkg/models"
)

// ConvertToColumnType converts a value decoded by the source driver into
// the Go type the destination column expects. NULL stays nil.
func ConvertToColumnType(val interface{}, t models.ColumnType) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch t {
	case models.TypeInt:
		return ConvertToInt64(val)
	case models.TypeFloat:
		return ConvertToFloat64(val)
	case models.TypeText:
		switch v := val.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		default:
			return fmt.Sprintf("%v", val), nil
		}
	case models.TypeBytes:
		switch v := val.(type) {
		case []byte:
			// database/sql may reuse the buffer on the next Scan
			out := make([]byte, len(v))
			copy(out, v)
			return out, nil
		case string:
			return []byte(v), nil
		default:
			return nil, fmt.Errorf("cannot convert %T to bytes", val)
		}
	default:
		return nil, fmt.Errorf("unknown column type %q", t)
	}
}

func ConvertToInt64(val interface{}) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", val)
	}
}

func ConvertToFloat64(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float", val)
	}
}
