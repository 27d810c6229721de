package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/textlens/textlens/internal/models"
	"github.com/textlens/textlens/internal/search"
	"gopkg.in/yaml.v3"
)

func testSession() *models.AnalysisSession {
	return &models.AnalysisSession{
		ID:        "abc-123",
		Model:     "local-llm",
		Engines:   []string{"duckduckgo"},
		CreatedAt: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		Paragraphs: []models.ParagraphResult{
			{
				Index:   0,
				Text:    "A mountain at sunrise.",
				Queries: []string{"mountain sunrise", "alpine peak"},
				Images: []search.Result{
					{URL: "https://img.example/a.jpg", Title: "Mountain"},
				},
			},
			{
				Index:   1,
				Text:    "Text with <script>alert(1)</script> markup.",
				Queries: []string{"markup"},
			},
		},
	}
}

func TestRenderWritesDefaultTemplate(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir)
	output := filepath.Join(dir, "output.html")

	if err := r.Render(testSession(), output); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "templates", "report.html")); err != nil {
		t.Errorf("expected default template written: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	if !strings.Contains(html, "A mountain at sunrise.") {
		t.Error("paragraph text missing from report")
	}
	if !strings.Contains(html, "https://img.example/a.jpg") {
		t.Error("image URL missing from report")
	}
	if !strings.Contains(html, "mountain sunrise, alpine peak") {
		t.Error("queries missing from report")
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("paragraph text not escaped")
	}
}

func TestRenderKeepsCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0755); err != nil {
		t.Fatal(err)
	}
	custom := "CUSTOM {{.ID}}"
	if err := os.WriteFile(filepath.Join(dir, "templates", "report.html"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(dir)
	output := filepath.Join(dir, "output.html")
	if err := r.Render(testSession(), output); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	data, _ := os.ReadFile(output)
	if string(data) != "CUSTOM abc-123" {
		t.Errorf("custom template not used, got %q", string(data))
	}

	stored, _ := os.ReadFile(filepath.Join(dir, "templates", "report.html"))
	if string(stored) != custom {
		t.Error("custom template was overwritten")
	}
}

func TestSaveToYAML(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveToYAML(dir, testSession())
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "run-") || !strings.HasSuffix(path, ".yaml") {
		t.Errorf("unexpected export filename %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var export RunExport
	if err := yaml.Unmarshal(data, &export); err != nil {
		t.Fatalf("export is not valid YAML: %v", err)
	}
	if export.Config.Model != "local-llm" {
		t.Errorf("unexpected model %q", export.Config.Model)
	}
	if len(export.Paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(export.Paragraphs))
	}
	if len(export.Paragraphs[0].Images) != 1 || export.Paragraphs[0].Images[0] != "https://img.example/a.jpg" {
		t.Errorf("image URLs not exported: %+v", export.Paragraphs[0])
	}
}
