package endpoints

import (
	"github.com/zkjiang/autoabstract/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Configuration endpoints
		&GetConfigEndpoint{},
		&ReplaceFieldsEndpoint{},
		&AddFieldEndpoint{},
		&DeleteFieldEndpoint{},
		&PresetConfigEndpoint{},
		&ResetConfigEndpoint{},
		&ConfigSchemaEndpoint{},

		// Extraction endpoints
		&ExtractEndpoint{},
		&GetResultEndpoint{},
		&ClearResultEndpoint{},
		&ExportResultEndpoint{},

		// Sample note endpoints
		&ListNotePresetsEndpoint{},
		&GetNotePresetEndpoint{},
	}
}
