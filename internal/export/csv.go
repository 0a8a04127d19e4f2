// Package export writes snapshot files. The delimited format follows one
// uniform escaping rule so an export can be re-parsed losslessly:
// nil/absent values become an empty field, temporal values an RFC3339
// string, nested structured values their JSON serialization, and every
// non-empty field is double-quoted with embedded quotes doubled.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Field struct {
	Name  string
	Value any
}

type Record []Field

// EscapeField renders one value per the format contract.
func EscapeField(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *time.Time:
		if x == nil {
			return ""
		}
		return quote(x.UTC().Format(time.RFC3339))
	case time.Time:
		return quote(x.UTC().Format(time.RFC3339))
	case *uint:
		if x == nil {
			return ""
		}
		return quote(fmt.Sprintf("%d", *x))
	case *string:
		if x == nil {
			return ""
		}
		return quote(*x)
	case datatypes.JSON:
		if len(x) == 0 {
			return ""
		}
		return quote(string(x))
	case json.RawMessage:
		if len(x) == 0 {
			return ""
		}
		return quote(string(x))
	case pq.StringArray:
		if len(x) == 0 {
			return ""
		}
		b, err := json.Marshal([]string(x))
		if err != nil {
			return quote(strings.Join(x, ","))
		}
		return quote(string(b))
	default:
		return quote(fmt.Sprint(x))
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteDelimited writes a header row derived from the first record's field
// set, then one line per record.
func WriteDelimited(path string, records []Record) error {
	var b strings.Builder

	header := make([]string, len(records[0]))
	for i, f := range records[0] {
		header[i] = quote(f.Name)
	}
	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")

	for _, rec := range records {
		cells := make([]string, len(rec))
		for i, f := range rec {
			cells[i] = EscapeField(f.Value)
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// WriteJSON serializes the envelope as a single indented document.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// FileName builds <dir>/<kind>_<timestamp>.<ext>.
func FileName(dir, kind, ext string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", kind, t.UTC().Format("20060102_150405"), ext))
}
