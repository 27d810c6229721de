// Package report renders an analysis session into a standalone HTML page
// and exports run summaries as YAML.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/models"
)

// templateFile is the report template inside templates/.
const templateFile = "report.html"

// defaultTemplate ships with the application and is written to templates/
// on first use so users can customize it.
const defaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Text Analysis Report</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
.paragraph { margin-bottom: 2.5rem; border-bottom: 1px solid #ddd; padding-bottom: 1.5rem; }
.queries { color: #666; font-size: 0.9rem; }
.images { display: flex; flex-wrap: wrap; gap: 0.5rem; margin-top: 0.75rem; }
.images img { height: 160px; object-fit: cover; border-radius: 4px; }
.meta { color: #999; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>Text Analysis Report</h1>
<p class="meta">Session {{.ID}} &middot; {{.CreatedAt.Format "2006-01-02 15:04"}} &middot; {{len .Paragraphs}} paragraphs</p>
{{range .Paragraphs}}
<div class="paragraph">
<p>{{.Text}}</p>
<p class="queries">Queries: {{range $i, $q := .Queries}}{{if $i}}, {{end}}{{$q}}{{end}}</p>
<div class="images">
{{range .Images}}<a href="{{.URL}}"><img src="{{.URL}}" alt="{{.Title}}" loading="lazy"></a>
{{end}}</div>
</div>
{{end}}
</body>
</html>
`

// Renderer writes HTML reports using the template under the working
// directory's templates/ folder.
type Renderer struct {
	Dir string
}

// NewRenderer returns a Renderer rooted at the given working directory.
func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir}
}

// templatePath ensures templates/report.html exists, writing the built-in
// template on first use, and returns its path.
func (r *Renderer) templatePath() (string, error) {
	dir := filepath.Join(r.Dir, config.TemplatesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create templates directory: %w", err)
	}

	path := filepath.Join(dir, templateFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("failed to create template: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(defaultTemplate); err != nil {
		return "", fmt.Errorf("failed to write template: %w", err)
	}
	return path, nil
}

// Render writes the session as HTML to the given output path.
func (r *Renderer) Render(session *models.AnalysisSession, outputPath string) error {
	path, err := r.templatePath()
	if err != nil {
		return err
	}

	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer out.Close()

	if err := tmpl.Execute(out, session); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
