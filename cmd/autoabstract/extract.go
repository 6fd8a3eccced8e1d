package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zkjiang/autoabstract/internal/abstract"
	"github.com/zkjiang/autoabstract/internal/config"
	"github.com/zkjiang/autoabstract/internal/home"
	"github.com/zkjiang/autoabstract/internal/notes"
	"github.com/zkjiang/autoabstract/internal/render"
	"github.com/zkjiang/autoabstract/internal/schema"
	"github.com/zkjiang/autoabstract/internal/session"
)

var (
	extractPreset       string
	extractSchemaPreset string
	extractExport       string
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Abstract a clinical note without a running server",
	Long: `Abstract a clinical note directly, without a running server.

The note is read from the given file, from stdin, or from a bundled
sample note via --note-preset. The abstracted record is printed as
formatted text; --export additionally writes the record to the
exports directory under the autoabstract home.

Examples:
  autoabstract extract note.txt
  cat note.txt | autoabstract extract
  autoabstract extract --note-preset er_report
  autoabstract extract note.txt --schema-preset billing_coding --export csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		note, err := readNote(args)
		if err != nil {
			return err
		}

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		sess := session.New()
		if extractSchemaPreset != "" {
			cfg, err := schema.LoadPreset(extractSchemaPreset)
			if err != nil {
				return err
			}
			sess.SetConfig(cfg)
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
		exCfg := cfgMgr.Get().ExtractorConfig()
		exCfg.Logger = logger
		client := abstract.NewOpenRouterClient(exCfg)

		rec, err := sess.Extract(ctx, client, note)
		if err != nil {
			return err
		}

		if err := render.Text(cmd.OutOrStdout(), rec, sess.Config()); err != nil {
			return err
		}

		if extractExport == "" {
			return nil
		}
		var data []byte
		var filename string
		switch extractExport {
		case "json":
			data, filename, err = render.ExportJSON(rec, time.Now())
		case "csv":
			data, filename, err = render.ExportCSV(rec, time.Now())
		case "xlsx":
			data, filename, err = render.ExportXLSX(rec, time.Now())
		default:
			return fmt.Errorf("unknown export format %q (want json, csv or xlsx)", extractExport)
		}
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		path := h.ExportPath(filename)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nExported to %s\n", path)
		return nil
	},
}

// readNote resolves the note text from a file argument, a bundled
// sample, or stdin, in that order.
func readNote(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(filepath.Clean(args[0]))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if extractPreset != "" {
		p, err := notes.LoadPreset(extractPreset)
		if err != nil {
			return "", err
		}
		return p.Content, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	extractCmd.Flags().StringVar(&extractPreset, "note-preset", "", "use a bundled sample note (er_report, discharge_summary)")
	extractCmd.Flags().StringVar(&extractSchemaPreset, "schema-preset", "", "abstract with a preset schema instead of the default")
	extractCmd.Flags().StringVar(&extractExport, "export", "", "also export the record: json, csv or xlsx")

	rootCmd.AddCommand(extractCmd)
}
