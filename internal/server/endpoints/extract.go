package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkjiang/autoabstract/internal/api"
	"github.com/zkjiang/autoabstract/internal/notes"
	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/session"
	"github.com/zkjiang/autoabstract/internal/svcctx"
)

// ExtractRequest is the body for POST /extract. Either Note carries the
// clinical note text directly, or Preset names an embedded sample note.
type ExtractRequest struct {
	Note   string `json:"note,omitempty"`
	Preset string `json:"preset,omitempty"`
}

// ExtractResponse carries the abstraction result.
type ExtractResponse struct {
	Status string         `json:"status"`
	Data   *record.Record `json:"data,omitempty"`
}

// ExtractEndpoint handles POST /extract.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	note := req.Note
	if req.Preset != "" {
		preset, err := notes.LoadPreset(req.Preset)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		note = preset.Content
	}

	sess := svcctx.SessionFrom(r.Context())
	rec, err := sess.Extract(r.Context(), svcctx.ExtractorFrom(r.Context()), note)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrBusy):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, session.ErrEmptyNote):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
				logger.Error("extraction failed", "error", err)
			}
			writeError(w, http.StatusBadGateway, "abstraction failed: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Status: sess.Status().String(),
		Data:   rec,
	})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Abstract structured data from a clinical note",
		Long: `Abstract structured data from a clinical note.

Reads the note from the given file, or uses an embedded sample note
when --preset is set (er_report or discharge_summary).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ExtractRequest{Preset: preset}
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read note: %w", err)
				}
				req.Note = string(data)
			}
			if req.Note == "" && req.Preset == "" {
				return errors.New("provide a note file or --preset")
			}

			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			if err := client.Post(cmd.Context(), "/extract", req, &resp); err != nil {
				return err
			}
			return api.Output(resp.Data)
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "Use an embedded sample note (er_report, discharge_summary)")
	return cmd
}
