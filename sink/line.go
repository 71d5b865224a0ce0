package sink

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/molnia/dbatch/core"
)

// encodeLine serializes a record to one delimited line, fields in the
// configured order. The returned line includes the trailing newline.
func encodeLine(record core.Record, fields []string, delimiter rune) (string, error) {
	names := fields
	if len(names) == 0 {
		names = record.Header()
	}

	values := make([]string, len(names))
	for i, name := range names {
		v, ok := record.Get(name)
		if !ok {
			return "", fmt.Errorf("record has no field %q", name)
		}
		values[i] = formatValue(v)
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Comma = delimiter

	if err := w.Write(values); err != nil {
		return "", fmt.Errorf("csv.Write: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv.Flush: %w", err)
	}

	return b.String(), nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

func joinFields(fields []string, delimiter rune) string {
	return strings.Join(fields, string(delimiter))
}
