package abstract

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/zkjiang/autoabstract/internal/schema"
)

//go:embed rules.tmpl
var rulesText string

//go:embed prompt.tmpl
var promptTmpl string

var promptTemplate = template.Must(template.New("prompt").Parse(promptTmpl))

const (
	defaultAddendum = "Extract standard injury surveillance data."
	customAddendum  = "Extract the specific fields defined in the schema. Return 'Not Specified' for missing string data."
)

// BuildPrompt assembles the single user message: the fixed rule preamble, a
// schema-specific addendum, the raw note, and the serialized target schema
// followed by the pure-JSON output instruction.
func BuildPrompt(note string, target *schema.Object, custom bool) (string, error) {
	schemaJSON, err := target.Indent()
	if err != nil {
		return "", err
	}

	addendum := defaultAddendum
	if custom {
		addendum = customAddendum
	}

	var buf bytes.Buffer
	data := struct {
		Rules    string
		Addendum string
		Note     string
		Schema   string
	}{
		Rules:    rulesText,
		Addendum: addendum,
		Note:     note,
		Schema:   string(schemaJSON),
	}
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
