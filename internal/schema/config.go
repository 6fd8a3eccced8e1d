package schema

// Config is the active extraction configuration: either the built-in default
// schema or an ordered list of user-defined fields.
//
// Config is a value type that is replaced wholesale on every change rather
// than mutated in place. The mutating methods return a new Config and leave
// the receiver untouched, so a config handed to an in-flight extraction can
// never be edited underneath it.
type Config struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	IsCustom bool    `json:"isCustom"`
	Fields   []Field `json:"fields"`
}

// DefaultConfigID identifies the built-in Injury Surveillance configuration.
const DefaultConfigID = "default"

// DefaultConfig returns the built-in configuration. Fields is empty; the
// extraction client falls back to DefaultSchema when IsCustom is false.
func DefaultConfig() Config {
	return Config{
		ID:       DefaultConfigID,
		Name:     "Injury Surveillance",
		IsCustom: false,
	}
}

// WithField returns a copy with f appended and IsCustom forced true.
func (c Config) WithField(f Field) Config {
	fields := make([]Field, 0, len(c.Fields)+1)
	fields = append(fields, c.Fields...)
	fields = append(fields, f)
	c.Fields = fields
	c.IsCustom = true
	return c
}

// WithoutField returns a copy with the field identified by id removed and
// IsCustom forced true. Removing an unknown id is a no-op on the field list.
func (c Config) WithoutField(id string) Config {
	fields := make([]Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.ID != id {
			fields = append(fields, f)
		}
	}
	c.Fields = fields
	c.IsCustom = true
	return c
}

// Schema returns the object schema this configuration requests: the
// generated schema when custom fields are active, the built-in default
// otherwise.
func (c Config) Schema() *Object {
	if c.IsCustom && len(c.Fields) > 0 {
		return Generate(c.Fields)
	}
	return DefaultSchema()
}

// CustomFields returns the fields to pass to the extraction client: nil when
// the built-in schema should be used.
func (c Config) CustomFields() []Field {
	if !c.IsCustom {
		return nil
	}
	return c.Fields
}
