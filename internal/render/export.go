package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zkjiang/autoabstract/internal/record"
)

// CSVContentType is the MIME type served with CSV exports.
const CSVContentType = "text/csv;charset=utf-8"

// ExportJSON returns the record pretty-printed with two-space indentation
// and the timestamped filename to save it under.
func ExportJSON(rec *record.Record, now time.Time) ([]byte, string, error) {
	data, err := rec.Indent()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize record: %w", err)
	}
	name := fmt.Sprintf("abstraction-%s.json", now.UTC().Format(time.RFC3339))
	return data, name, nil
}

// ExportCSV flattens the record into exactly two rows: a header row of all
// top-level keys in their natural order, and one data row. Every cell is
// quoted with internal quotes doubled.
func ExportCSV(rec *record.Record, now time.Time) ([]byte, string, error) {
	headers := rec.Keys()
	row := make([]string, len(headers))
	for i, key := range headers {
		row[i] = flattenCell(rec, key)
	}

	var b strings.Builder
	writeCSVRow(&b, headers)
	b.WriteByte('\n')
	writeCSVRow(&b, row)

	name := fmt.Sprintf("clinical_data_%s.csv", now.UTC().Format("2006-01-02"))
	return []byte(b.String()), name, nil
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
}

// flattenCell renders one record value as a single table cell. Arrays are
// joined with "; ", nested objects collapse to compact JSON, null becomes
// the empty string.
func flattenCell(rec *record.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case []any:
		return strings.Join(rec.Strings(key), "; ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	default:
		return rec.String(key)
	}
}
