package schema

import (
	"bytes"
	"encoding/json"
)

// Property is the schema fragment for a single object property.
type Property struct {
	// Type is the JSON Schema type ("string", "array", "boolean").
	Type string
	// ArrayItems is the item type for arrays ("" for non-arrays). Arrays are
	// always modeled as lists of a single scalar type.
	ArrayItems string
	// Description is the extraction instruction shown to the model.
	Description string
}

// MarshalJSON emits the property with a fixed key order (type, items,
// description) so serialized schemas are byte-stable.
func (p Property) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	writeJSONString(&buf, p.Type)
	if p.ArrayItems != "" {
		buf.WriteString(`,"items":{"type":`)
		writeJSONString(&buf, p.ArrayItems)
		buf.WriteByte('}')
	}
	buf.WriteString(`,"description":`)
	writeJSONString(&buf, p.Description)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type namedProperty struct {
	key  string
	prop Property
}

// Object is an object schema whose properties keep insertion order when
// marshaled. encoding/json sorts map keys, which would scramble the schema
// text embedded in the prompt relative to the order the user defined fields.
type Object struct {
	props []namedProperty
}

// Add appends a property. Duplicate keys are allowed; the later entry
// overwrites the earlier one in place, matching property-map semantics.
func (o *Object) Add(key string, p Property) {
	for i := range o.props {
		if o.props[i].key == key {
			o.props[i].prop = p
			return
		}
	}
	o.props = append(o.props, namedProperty{key: key, prop: p})
}

// Keys returns the property keys in schema order. Every property is also a
// required property, so this doubles as the required list.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.props))
	for i, np := range o.props {
		keys[i] = np.key
	}
	return keys
}

// Property returns the schema fragment for key.
func (o *Object) Property(key string) (Property, bool) {
	for _, np := range o.props {
		if np.key == key {
			return np.prop, true
		}
	}
	return Property{}, false
}

// Len returns the number of properties, including missingInformation.
func (o *Object) Len() int { return len(o.props) }

// MarshalJSON emits the full object schema: ordered properties, a required
// list containing every key, and additionalProperties:false.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	for i, np := range o.props {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, np.key)
		buf.WriteByte(':')
		pb, err := np.prop.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(pb)
	}
	buf.WriteString(`},"required":[`)
	for i, np := range o.props {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, np.key)
	}
	buf.WriteString(`],"additionalProperties":false}`)
	return buf.Bytes(), nil
}

// Indent returns the schema pretty-printed with two-space indentation, the
// form embedded in prompts and surfaced by the schema endpoint.
func (o *Object) Indent() ([]byte, error) {
	raw, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
