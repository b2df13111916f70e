package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.txt.tmpl
var templateFS embed.FS

// Renderer turns evaluations into bytes.
type Renderer interface {
	Render(evals []Evaluation) ([]byte, error)
}

// Writer writes a rendered report.
type Writer interface {
	Write(filename string, data []byte) error
}

type textRenderer struct {
	tmpl *template.Template
}

type jsonRenderer struct{}

type yamlRenderer struct{}

type fileWriter struct {
	stdout io.Writer
}

// Formats lists the supported output formats.
func Formats() []string { return []string{"text", "json", "yaml"} }

// NewRenderer returns the renderer for format.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		tmpl := template.Must(template.New("").Funcs(template.FuncMap{
			"join": strings.Join,
			"list": renderList,
		}).ParseFS(templateFS, "templates/*.txt.tmpl"))
		return &textRenderer{tmpl: tmpl}, nil
	case "json":
		return jsonRenderer{}, nil
	case "yaml":
		return yamlRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

// NewFileWriter writes to a file, or to stdout for "" and "-".
func NewFileWriter(stdout io.Writer) Writer {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &fileWriter{stdout: stdout}
}

func (r *textRenderer) Render(evals []Evaluation) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "report.txt.tmpl", evals); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	return buf.Bytes(), nil
}

func (jsonRenderer) Render(evals []Evaluation) ([]byte, error) {
	b, err := json.MarshalIndent(evals, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (yamlRenderer) Render(evals []Evaluation) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(evals); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *fileWriter) Write(filename string, data []byte) error {
	if filename == "" || filename == "-" {
		_, err := w.stdout.Write(data)
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func renderList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
