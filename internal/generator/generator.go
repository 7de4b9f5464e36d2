package generator

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gitlab.com/tozd/go/errors"

	"github.com/seitarof/gen-uwp-dts/internal/decl"
	"github.com/seitarof/gen-uwp-dts/internal/resolver"
)

//go:embed templates/prepend.d.ts
var header string

//go:embed templates/*.tmpl
var templateFS embed.FS

// Generator writes the declaration file for a merged tree.
type Generator interface {
	Generate(cfg Config, root *decl.Namespace) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputFilename() string
}

// Formatter post-processes the rendered declaration file.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated declarations to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	resolver  resolver.Resolver
	formatter Formatter
	writer    FileWriter
	tmpl      *template.Template
}

type crlfFormatter struct{}

type fileWriter struct{}

type templateData struct {
	Header  string
	Root    *decl.Namespace
	Members []string
}

// New creates a declaration generator.
func New(r resolver.Resolver, f Formatter, w FileWriter) Generator {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"comment": docComment,
	}).ParseFS(templateFS, "templates/*.tmpl"))
	return &generatorImpl{resolver: r, formatter: f, writer: w, tmpl: tmpl}
}

// NewCRLFFormatter creates a formatter that emits CRLF line endings and
// strips trailing blanks.
func NewCRLFFormatter() Formatter {
	return &crlfFormatter{}
}

// NewFileWriter creates a plain file writer that creates missing parent
// directories.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

func (g *generatorImpl) Generate(cfg Config, root *decl.Namespace) error {
	if root == nil {
		return errors.New("no declarations")
	}

	data := templateData{Header: header, Root: root}
	for _, d := range root.Members {
		e := newEmitter(g.resolver, 1)
		e.namespaceMember(d)
		data.Members = append(data.Members, strings.TrimSuffix(e.String(), "\n"))
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "declarations.d.ts.tmpl", data); err != nil {
		return errors.Errorf("template: %w", err)
	}

	formatted, err := g.formatter.Format(cfg.OutputFilename(), buf.Bytes())
	if err != nil {
		return errors.Errorf("format: %w", err)
	}
	if err := g.writer.Write(cfg.OutputFilename(), formatted); err != nil {
		return errors.Errorf("write: %w", err)
	}
	return nil
}

// render emits a single declaration at top level with CRLF line endings.
func render(r resolver.Resolver, d decl.Decl) string {
	e := newEmitter(r, 0)
	e.namespaceMember(d)
	return string(toCRLF([]byte(e.String())))
}

func (f *crlfFormatter) Format(_ string, src []byte) ([]byte, error) {
	return toCRLF(src), nil
}

func toCRLF(src []byte) []byte {
	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return []byte(strings.Join(lines, "\r\n"))
}

func (w *fileWriter) Write(filename string, data []byte) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(os.WriteFile(filename, data, 0o644))
}
