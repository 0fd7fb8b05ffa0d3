package exiftool

import (
	"path/filepath"
	"strconv"
)

// Record is one file's tag set as decoded from the tool's JSON output.
// Tag values keep their JSON types (string, float64, bool).
type Record map[string]any

// SourceFile returns the path the tool reported for this record.
func (r Record) SourceFile() string {
	s, _ := r.String("SourceFile")
	return s
}

// SourceBase returns the base name of the reported source file.
func (r Record) SourceBase() string {
	return filepath.Base(r.SourceFile())
}

// String returns the tag value rendered as a string. Numeric values are
// formatted without a trailing ".0"; a missing tag returns ok=false.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Int returns the tag value as an integer. Both JSON numbers and numeric
// strings are accepted; anything else returns ok=false.
func (r Record) Int(key string) (int, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
