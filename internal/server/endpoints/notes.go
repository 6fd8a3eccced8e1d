package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/zkjiang/autoabstract/internal/api"
	"github.com/zkjiang/autoabstract/internal/notes"
)

// NotePresetsResponse lists the embedded sample notes.
type NotePresetsResponse struct {
	Presets []notes.Preset `json:"presets"`
}

// ListNotePresetsEndpoint handles GET /notes/presets.
type ListNotePresetsEndpoint struct{}

func (e *ListNotePresetsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/notes/presets", e.handler
}

func (e *ListNotePresetsEndpoint) RequiresInit() bool { return false }

func (e *ListNotePresetsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	// Strip content so the listing stays small; GET /notes/presets/{key}
	// returns the full text.
	presets := notes.Presets()
	for i := range presets {
		presets[i].Content = ""
	}
	writeJSON(w, http.StatusOK, NotePresetsResponse{Presets: presets})
}

func (e *ListNotePresetsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the embedded sample notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp NotePresetsResponse
			if err := client.Get(cmd.Context(), "/notes/presets", &resp); err != nil {
				return err
			}
			for _, p := range resp.Presets {
				fmt.Printf("%-20s %s\n", p.Key, p.Name)
			}
			return nil
		},
	}
}

// GetNotePresetEndpoint handles GET /notes/presets/{key}.
type GetNotePresetEndpoint struct{}

func (e *GetNotePresetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/notes/presets/{key}", e.handler
}

func (e *GetNotePresetEndpoint) RequiresInit() bool { return false }

func (e *GetNotePresetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	preset, err := notes.LoadPreset(r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (e *GetNotePresetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show a sample note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var preset notes.Preset
			if err := client.Get(cmd.Context(), "/notes/presets/"+args[0], &preset); err != nil {
				return err
			}
			fmt.Println(preset.Content)
			return nil
		},
	}
}
