// Package record holds the structured result returned by the model.
//
// A record has no fixed shape: its keys are determined at runtime by
// whichever schema was requested, and the model's reply may drift from that
// schema. Consumers treat every value as an open JSON value with explicit
// fallbacks for unexpected nesting.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zkjiang/autoabstract/internal/schema"
)

// Record is a JSON object whose top-level key order is preserved from the
// wire. encoding/json maps lose insertion order, and both the CSV export and
// the generic layout render keys in their natural order.
type Record struct {
	keys   []string
	values map[string]any
}

// Decode parses raw JSON into a Record. The top level must be an object;
// anything else is structurally unusable by every downstream consumer.
func Decode(raw []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	r := &Record{values: make(map[string]any)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("invalid JSON value for %q: %w", key, err)
		}

		if _, seen := r.values[key]; !seen {
			r.keys = append(r.keys, key)
		}
		r.values[key] = val
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return r, nil
}

// Keys returns the top-level keys in wire order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the raw value for key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of top-level keys.
func (r *Record) Len() int { return len(r.keys) }

// String returns the value for key rendered as a string. Scalars are
// formatted directly; nested values fall back to compact JSON. Absent or
// null values return "".
func (r *Record) String(key string) string {
	v, ok := r.values[key]
	if !ok || v == nil {
		return ""
	}
	return formatScalar(v)
}

// Strings returns the value for key as a list of display strings. Non-array
// values return nil. Nested objects or arrays inside the list are serialized
// to compact JSON.
func (r *Record) Strings(key string) []string {
	arr, ok := r.values[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(arr))
	for i, item := range arr {
		out[i] = formatScalar(item)
	}
	return out
}

// Bool returns the value for key as a boolean, with ok=false when the value
// is absent or not a boolean.
func (r *Record) Bool(key string) (bool, bool) {
	b, ok := r.values[key].(bool)
	return b, ok
}

// MissingFields returns the keys the model flagged as missing. Absent,
// null, or non-array missingInformation yields nil.
func (r *Record) MissingFields() []string {
	arr, ok := r.values[schema.MissingInformationKey].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Missing reports whether key was flagged in missingInformation. The match
// is case-insensitive: models routinely return keys with drifted casing.
func (r *Record) Missing(key string) bool {
	for _, m := range r.MissingFields() {
		if strings.EqualFold(m, key) {
			return true
		}
	}
	return false
}

// Partition splits all keys except missingInformation into simple scalars
// (string, boolean, number, null) and complex values (arrays and nested
// objects), preserving wire order within each group.
func (r *Record) Partition() (simple, complex []string) {
	for _, key := range r.keys {
		if key == schema.MissingInformationKey {
			continue
		}
		switch r.values[key].(type) {
		case []any, map[string]any:
			complex = append(complex, key)
		default:
			simple = append(simple, key)
		}
	}
	return simple, complex
}

// MarshalYAML renders the record as a yaml mapping in wire order.
// Needed because the CLI output layer marshals responses with yaml.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		var key, val yaml.Node
		if err := key.Encode(k); err != nil {
			return nil, err
		}
		if err := val.Encode(r.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// UnmarshalJSON parses raw JSON into the record, preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := Decode(data)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

// MarshalJSON serializes the record with its original key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indent returns the record pretty-printed with two-space indentation, the
// form used by the JSON export.
func (r *Record) Indent() ([]byte, error) {
	raw, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatScalar renders a single JSON value for display: strings pass
// through, numbers drop the float64 artifacts, everything nested falls back
// to compact JSON.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		// Avoid "3.000000" for integral values.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
