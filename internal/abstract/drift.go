package abstract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zkjiang/autoabstract/internal/schema"
)

// checkDrift validates the parsed reply against the requested schema.
// Returning a non-nil error signals drift (missing required keys, extra
// keys, wrong element types); callers treat it as a warning, never a
// rejection.
func checkDrift(target *schema.Object, parsed string) error {
	schemaBytes, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("failed to serialize schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal([]byte(parsed), &doc); err != nil {
		return fmt.Errorf("failed to decode output for validation: %w", err)
	}

	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("output does not match requested schema: %w", err)
	}
	return nil
}
