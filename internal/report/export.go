package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/textlens/textlens/internal/models"
)

// RunConfig represents the configuration section of an exported run
type RunConfig struct {
	Model     string   `yaml:"model"`
	Engines   []string `yaml:"engines"`
	Timestamp string   `yaml:"timestamp"`
}

// RunParagraph represents one paragraph in an exported run
type RunParagraph struct {
	Index   int      `yaml:"index"`
	Text    string   `yaml:"text"`
	Queries []string `yaml:"queries"`
	Images  []string `yaml:"images"`
}

// RunExport represents the complete exported run
type RunExport struct {
	Config     RunConfig      `yaml:"config"`
	Paragraphs []RunParagraph `yaml:"paragraphs"`
}

// SaveToYAML writes a session summary to a YAML file in the runs/ directory
// and returns the file path.
func SaveToYAML(dir string, session *models.AnalysisSession) (string, error) {
	runsDir := filepath.Join(dir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create runs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	export := RunExport{
		Config: RunConfig{
			Model:     session.Model,
			Engines:   session.Engines,
			Timestamp: timestamp,
		},
		Paragraphs: make([]RunParagraph, 0, len(session.Paragraphs)),
	}

	for _, p := range session.Paragraphs {
		paragraph := RunParagraph{
			Index:   p.Index,
			Text:    p.Text,
			Queries: p.Queries,
			Images:  make([]string, 0, len(p.Images)),
		}
		for _, img := range p.Images {
			paragraph.Images = append(paragraph.Images, img.URL)
		}
		export.Paragraphs = append(export.Paragraphs, paragraph)
	}

	data, err := yaml.Marshal(&export)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(runsDir, fmt.Sprintf("run-%s.yaml", timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}
