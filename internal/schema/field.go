// Package schema builds the JSON Schemas that constrain model output.
//
// A schema is either the built-in Injury Surveillance schema or generated
// from an ordered list of user-defined fields. Generated schemas preserve
// field order in the serialized document, which matters because the schema
// text is embedded verbatim in the prompt.
package schema

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// FieldType is the declared type of a user-defined output field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeArray   FieldType = "array"
	TypeBoolean FieldType = "boolean"
	// TypeDate is accepted but generates a plain string property.
	TypeDate FieldType = "date"
)

// Field is one user-defined output property: the JSON key the model should
// populate, the instruction telling it what to extract, and a primitive type.
type Field struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Type        FieldType `json:"type"`
}

var (
	ErrEmptyKey         = errors.New("field key is empty after normalization")
	ErrEmptyDescription = errors.New("field description must not be empty")
)

// NormalizeKey derives a JSON property name from free-text user input:
// lower-cased, whitespace runs collapsed to single underscores, and any
// character outside [a-z0-9_] stripped. Returns "" for unusable input.
func NormalizeKey(label string) string {
	words := strings.Fields(strings.ToLower(label))
	joined := strings.Join(words, "_")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewField validates and creates a field from raw user input. The key is
// normalized from the label; an ID is assigned at creation and is stable for
// the lifetime of the field.
func NewField(label, description string, typ FieldType) (Field, error) {
	key := NormalizeKey(label)
	if key == "" {
		return Field{}, ErrEmptyKey
	}
	if strings.TrimSpace(description) == "" {
		return Field{}, ErrEmptyDescription
	}
	return Field{
		ID:          uuid.New().String(),
		Key:         key,
		Description: description,
		Type:        typ,
	}, nil
}
