package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/zkjiang/autoabstract/internal/api"
	"github.com/zkjiang/autoabstract/internal/schema"
	"github.com/zkjiang/autoabstract/internal/svcctx"
)

// ConfigResponse carries the active extraction configuration.
type ConfigResponse struct {
	Config schema.Config `json:"config"`
}

// FieldRequest describes one user-defined output field.
type FieldRequest struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func (fr FieldRequest) toField() (schema.Field, error) {
	typ := schema.FieldType(fr.Type)
	switch typ {
	case schema.TypeString, schema.TypeArray, schema.TypeBoolean, schema.TypeDate:
	case "":
		typ = schema.TypeString
	default:
		return schema.Field{}, fmt.Errorf("unknown field type: %s", fr.Type)
	}
	return schema.NewField(fr.Label, fr.Description, typ)
}

// GetConfigEndpoint handles GET /config.
type GetConfigEndpoint struct{}

func (e *GetConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/config", e.handler
}

func (e *GetConfigEndpoint) RequiresInit() bool { return true }

func (e *GetConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess := svcctx.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, ConfigResponse{Config: sess.Config()})
}

func (e *GetConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the active extraction configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ConfigResponse
			if err := client.Get(cmd.Context(), "/config", &resp); err != nil {
				return err
			}
			return api.Output(resp.Config)
		},
	}
}

// ReplaceFieldsRequest is the body for PUT /config/fields.
type ReplaceFieldsRequest struct {
	Fields []FieldRequest `json:"fields"`
}

// ReplaceFieldsEndpoint handles PUT /config/fields: it swaps in a whole new
// custom field list.
type ReplaceFieldsEndpoint struct{}

func (e *ReplaceFieldsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/config/fields", e.handler
}

func (e *ReplaceFieldsEndpoint) RequiresInit() bool { return true }

func (e *ReplaceFieldsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ReplaceFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg := schema.DefaultConfig()
	for _, fr := range req.Fields {
		field, err := fr.toField()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg = cfg.WithField(field)
	}

	sess := svcctx.SessionFrom(r.Context())
	sess.SetConfig(cfg)
	writeJSON(w, http.StatusOK, ConfigResponse{Config: cfg})
}

func (e *ReplaceFieldsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var fieldsJSON string
	cmd := &cobra.Command{
		Use:   "set-fields",
		Short: "Replace the custom field list",
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields []FieldRequest
			if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
				return fmt.Errorf("invalid --fields JSON: %w", err)
			}
			client := api.NewClient(getServerURL())
			var resp ConfigResponse
			if err := client.Put(cmd.Context(), "/config/fields", ReplaceFieldsRequest{Fields: fields}, &resp); err != nil {
				return err
			}
			return api.Output(resp.Config)
		},
	}
	cmd.Flags().StringVar(&fieldsJSON, "fields", "", `Field list as JSON, e.g. '[{"label":"Allergies","description":"...","type":"array"}]'`)
	_ = cmd.MarkFlagRequired("fields")
	return cmd
}

// AddFieldEndpoint handles POST /config/fields: it appends one field to the
// active configuration.
type AddFieldEndpoint struct{}

func (e *AddFieldEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/config/fields", e.handler
}

func (e *AddFieldEndpoint) RequiresInit() bool { return true }

func (e *AddFieldEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	field, err := req.toField()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := svcctx.SessionFrom(r.Context())
	cfg := sess.Config().WithField(field)
	sess.SetConfig(cfg)
	writeJSON(w, http.StatusOK, ConfigResponse{Config: cfg})
}

func (e *AddFieldEndpoint) Command(getServerURL func() string) *cobra.Command {
	var description, fieldType string
	cmd := &cobra.Command{
		Use:   "add-field <label>",
		Short: "Add a field to the custom schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := FieldRequest{Label: args[0], Description: description, Type: fieldType}
			var resp ConfigResponse
			if err := client.Post(cmd.Context(), "/config/fields", req, &resp); err != nil {
				return err
			}
			return api.Output(resp.Config)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "What the model should extract into this field")
	cmd.Flags().StringVar(&fieldType, "type", "string", "Field type: string, array, boolean, date")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

// DeleteFieldEndpoint handles DELETE /config/fields/{id}.
type DeleteFieldEndpoint struct{}

func (e *DeleteFieldEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/config/fields/{id}", e.handler
}

func (e *DeleteFieldEndpoint) RequiresInit() bool { return true }

func (e *DeleteFieldEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess := svcctx.SessionFrom(r.Context())
	cfg := sess.Config().WithoutField(r.PathValue("id"))
	sess.SetConfig(cfg)
	writeJSON(w, http.StatusOK, ConfigResponse{Config: cfg})
}

func (e *DeleteFieldEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-field <id>",
		Short: "Remove a field from the custom schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ConfigResponse
			if err := client.Delete(cmd.Context(), "/config/fields/"+args[0]); err != nil {
				return err
			}
			if err := client.Get(cmd.Context(), "/config", &resp); err != nil {
				return err
			}
			return api.Output(resp.Config)
		},
	}
}

// PresetConfigEndpoint handles POST /config/preset/{key}: it replaces the
// active configuration with a built-in schema preset.
type PresetConfigEndpoint struct{}

func (e *PresetConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/config/preset/{key}", e.handler
}

func (e *PresetConfigEndpoint) RequiresInit() bool { return true }

func (e *PresetConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cfg, err := schema.LoadPreset(r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	sess := svcctx.SessionFrom(r.Context())
	sess.SetConfig(cfg)
	writeJSON(w, http.StatusOK, ConfigResponse{Config: cfg})
}

func (e *PresetConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "preset <key>",
		Short: "Load a built-in schema preset",
		Long: `Load a built-in schema preset as the active configuration.

Available presets:
  er_injury_surveillance    ER Injury Surveillance
  medication_reconciliation Meds Recon
  billing_coding            Billing Support
  discharge_summary         Discharge Summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ConfigResponse
			if err := client.Post(cmd.Context(), "/config/preset/"+args[0], nil, &resp); err != nil {
				return err
			}
			return api.Output(resp.Config)
		},
	}
}

// ResetConfigEndpoint handles POST /config/reset.
type ResetConfigEndpoint struct{}

func (e *ResetConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/config/reset", e.handler
}

func (e *ResetConfigEndpoint) RequiresInit() bool { return true }

func (e *ResetConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess := svcctx.SessionFrom(r.Context())
	sess.ResetConfig()
	writeJSON(w, http.StatusOK, ConfigResponse{Config: sess.Config()})
}

func (e *ResetConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default injury surveillance configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ConfigResponse
			if err := client.Post(cmd.Context(), "/config/reset", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp.Config)
		},
	}
}

// ConfigSchemaEndpoint handles GET /config/schema: the JSON schema the
// active configuration would request from the model.
type ConfigSchemaEndpoint struct{}

func (e *ConfigSchemaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/config/schema", e.handler
}

func (e *ConfigSchemaEndpoint) RequiresInit() bool { return true }

func (e *ConfigSchemaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess := svcctx.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sess.Config().Schema())
}

func (e *ConfigSchemaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the JSON schema the active configuration requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			body, _, err := client.GetRaw(cmd.Context(), "/config/schema")
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
}
