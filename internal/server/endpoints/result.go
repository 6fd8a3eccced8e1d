package endpoints

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zkjiang/autoabstract/internal/api"
	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/render"
	"github.com/zkjiang/autoabstract/internal/svcctx"
)

// ResultResponse carries the last extraction result.
type ResultResponse struct {
	Status string         `json:"status"`
	Data   *record.Record `json:"data,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// GetResultEndpoint handles GET /result.
type GetResultEndpoint struct{}

func (e *GetResultEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/result", e.handler
}

func (e *GetResultEndpoint) RequiresInit() bool { return true }

func (e *GetResultEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess := svcctx.SessionFrom(r.Context())
	resp := ResultResponse{Status: sess.Status().String()}

	if err := sess.Err(); err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	rec, ok := sess.Result()
	if !ok {
		writeError(w, http.StatusNotFound, "no extraction result")
		return
	}
	resp.Data = rec
	writeJSON(w, http.StatusOK, resp)
}

func (e *GetResultEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the last extraction result",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ResultResponse
			if err := client.Get(cmd.Context(), "/result", &resp); err != nil {
				return err
			}
			if resp.Error != "" {
				return fmt.Errorf("last extraction failed: %s", resp.Error)
			}
			return api.Output(resp.Data)
		},
	}
}

// ClearResultEndpoint handles DELETE /result.
type ClearResultEndpoint struct{}

func (e *ClearResultEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/result", e.handler
}

func (e *ClearResultEndpoint) RequiresInit() bool { return true }

func (e *ClearResultEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess := svcctx.SessionFrom(r.Context())
	sess.Clear()
	writeJSON(w, http.StatusOK, ResultResponse{Status: sess.Status().String()})
}

func (e *ClearResultEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the last extraction result",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/result"); err != nil {
				return err
			}
			fmt.Println("Result cleared")
			return nil
		},
	}
}

// ExportResultEndpoint handles GET /result/export/{format} where format is
// json, csv, or xlsx. The payload is served as a download with a
// timestamped filename.
type ExportResultEndpoint struct{}

func (e *ExportResultEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/result/export/{format}", e.handler
}

func (e *ExportResultEndpoint) RequiresInit() bool { return true }

func (e *ExportResultEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess := svcctx.SessionFrom(r.Context())
	rec, ok := sess.Result()
	if !ok {
		writeError(w, http.StatusNotFound, "no extraction result")
		return
	}

	var (
		data        []byte
		name        string
		contentType string
		err         error
	)
	now := time.Now()
	switch format := r.PathValue("format"); format {
	case "json":
		data, name, err = render.ExportJSON(rec, now)
		contentType = "application/json"
	case "csv":
		data, name, err = render.ExportCSV(rec, now)
		contentType = render.CSVContentType
	case "xlsx":
		data, name, err = render.ExportXLSX(rec, now)
		contentType = render.XLSXContentType
	default:
		writeError(w, http.StatusBadRequest, "unknown export format: "+format)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *ExportResultEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <json|csv|xlsx>",
		Short: "Download the last result as JSON, CSV, or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			body, headers, err := client.GetRaw(cmd.Context(), "/result/export/"+args[0])
			if err != nil {
				return err
			}

			name := "export." + args[0]
			if _, params, err := mime.ParseMediaType(headers.Get("Content-Disposition")); err == nil {
				if fn := params["filename"]; fn != "" {
					name = fn
				}
			}

			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory to save the export into")
	return cmd
}
