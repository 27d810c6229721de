package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/textlens/textlens/internal/analysis"
	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/dataset"
	"github.com/textlens/textlens/internal/history"
	"github.com/textlens/textlens/internal/images"
	"github.com/textlens/textlens/internal/llm"
	"github.com/textlens/textlens/internal/models"
	"github.com/textlens/textlens/internal/report"
)

type analyzeOptions struct {
	dir      string
	provider string
	output   string
	export   bool
	download bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze text and collect images per paragraph",
		Long: `Splits text into paragraphs, generates search queries with the
configured language model, and collects matching images for each
paragraph. Reads from the given file, or from stdin when no file is
given. The result is written as an HTML report.`,
		Example: `  # Analyze a text file
  textlens analyze story.txt

  # Pipe text in and download the found images
  cat story.txt | textlens analyze --download

  # Use Gemini for query generation and export the run as YAML
  textlens analyze story.txt --provider gemini --export`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(args)
			if err != nil {
				return err
			}

			service, settings, err := buildService(opts)
			if err != nil {
				return err
			}

			session, err := service.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			session.Provider = opts.provider

			return finishSession(cmd.Context(), cmd.OutOrStdout(), opts, settings, session, opts.output)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Working directory")
	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "LLM provider (chat, ollama, gemini)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "output.html", "HTML report path")
	cmd.Flags().BoolVar(&opts.export, "export", false, "Export the run as YAML under runs/")
	cmd.Flags().BoolVar(&opts.download, "download", false, "Download found images into saved_images/")

	cmd.AddCommand(newBatchCmd())

	return cmd
}

func newBatchCmd() *cobra.Command {
	opts := &analyzeOptions{}
	var sample int

	cmd := &cobra.Command{
		Use:   "batch <dataset>",
		Short: "Analyze every record of a dataset file",
		Long: `Runs the analysis pipeline over each record of a dataset. Supported
formats are Parquet and JSONL with "id" and "text" columns, and plain
text files treated as a single record. Each record gets its own HTML
report named after its ID.`,
		Example: `  # Analyze a Parquet corpus
  textlens analyze batch stories.parquet

  # Only the first 10 records, exporting each run
  textlens analyze batch stories.jsonl --sample 10 --export`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := dataset.NewLoader(args[0]).LoadSample(sample)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("dataset %s contains no records", args[0])
			}
			slog.Info("Loaded dataset", "path", args[0], "records", len(records))

			service, settings, err := buildService(opts)
			if err != nil {
				return err
			}

			failed := 0
			for _, record := range records {
				session, err := service.Analyze(cmd.Context(), record.Text)
				if err != nil {
					slog.Error("Record analysis failed", "id", record.ID, "error", err)
					failed++
					continue
				}
				session.Provider = opts.provider

				output := filepath.Join(opts.dir, sanitizeName(record.ID)+".html")
				if err := finishSession(cmd.Context(), cmd.OutOrStdout(), opts, settings, session, output); err != nil {
					slog.Error("Record report failed", "id", record.ID, "error", err)
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d records failed", failed, len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Working directory")
	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "LLM provider (chat, ollama, gemini)")
	cmd.Flags().BoolVar(&opts.export, "export", false, "Export each run as YAML under runs/")
	cmd.Flags().BoolVar(&opts.download, "download", false, "Download found images into saved_images/")
	cmd.Flags().IntVarP(&sample, "sample", "n", 0, "Analyze only the first N records (0 = all)")

	return cmd
}

// buildService loads settings from the working directory and wires the
// provider and searcher.
func buildService(opts *analyzeOptions) (*analysis.Service, config.Settings, error) {
	settings, err := config.LoadSettings(filepath.Join(opts.dir, config.SettingsFile))
	if err != nil {
		slog.Warn("Falling back to default settings", "error", err)
	}

	provider, err := llm.ForProvider(opts.provider, settings.LLMURL)
	if err != nil {
		return nil, settings, err
	}
	return analysis.NewService(settings, provider), settings, nil
}

// finishSession renders the report and applies the optional export,
// download, and history bookkeeping shared by analyze and batch.
func finishSession(ctx context.Context, out io.Writer, opts *analyzeOptions, settings config.Settings, session *models.AnalysisSession, output string) error {
	if err := report.NewRenderer(opts.dir).Render(session, output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s (%d paragraphs, %d images)\n",
		output, len(session.Paragraphs), session.ImageCount())

	if opts.export {
		path, err := report.SaveToYAML(opts.dir, session)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Run exported to %s\n", path)
	}

	if opts.download {
		var urls []string
		for _, p := range session.Paragraphs {
			for _, img := range p.Images {
				urls = append(urls, img.URL)
			}
		}
		paths := images.NewDownloader(opts.dir).DownloadAll(ctx, urls)
		fmt.Fprintf(out, "Downloaded %d of %d images\n", len(paths), len(urls))
	}

	if err := history.NewStore(opts.dir).Add(history.Entry{
		ID:         session.ID,
		Timestamp:  session.CreatedAt,
		Preview:    session.Text,
		Paragraphs: len(session.Paragraphs),
		Images:     session.ImageCount(),
		Engine:     settings.SearchEngine,
		Model:      settings.LLMModel,
	}); err != nil {
		slog.Warn("Failed to record history entry", "error", err)
	}
	return nil
}

// readText reads the analysis input from the optional file argument or
// stdin.
func readText(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no input text: pass a file or pipe text to stdin")
	}
	return string(data), nil
}

// sanitizeName makes a record ID safe as a file name.
func sanitizeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
