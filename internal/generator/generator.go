package generator

import (
	"bytes"
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/seitarof/gen-priv/internal/project"
)

//go:embed templates/*.h.tmpl
var templateFS embed.FS

const lgpl3Header = `
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU Lesser General Public
License as published by the Free Software Foundation; either
version 3 of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Lesser General Public License for more details.

You should have received a copy of the GNU Lesser General Public License
along with this program; if not, write to the Free Software Foundation,
Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.
`

// keptHeader is never removed from the output directory.
const keptHeader = "common.h"

// Generator writes one accessor header per tracked struct.
type Generator interface {
	Generate(cfg Config, proj *project.Project) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputDir() string
}

// FileWriter writes generated code to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

// Options controls the header comment of generated files.
type Options struct {
	ProjectName string
	Attribution string
	// Now supplies the copyright year. Defaults to time.Now.
	Now    func() time.Time
	Logger *log.Logger
}

type generatorImpl struct {
	differ Differ
	writer FileWriter
	opts   Options
	tmpl   *template.Template
}

type fileWriter struct{}

type headerData struct {
	ProjectName   string
	Copyrights    []string
	License       []string
	Guard         string
	StructName    string
	Typedef       string
	Layouts       []layoutData
	VersionIDFunc string
	Properties    []string
}

type layoutData struct {
	ID         int
	HasDiff    bool
	Diff       string
	Definition string
}

// New creates a header generator.
func New(d Differ, w FileWriter, opts Options) Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.h.tmpl"))
	return &generatorImpl{differ: d, writer: w, opts: opts, tmpl: tmpl}
}

// NewFileWriter creates a plain file writer.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

// Generate clears stale headers out of the output directory and writes a
// header for every struct of proj, which must already be simplified.
func (g *generatorImpl) Generate(cfg Config, proj *project.Project) error {
	if len(proj.Structs()) == 0 {
		return fmt.Errorf("no structs to generate")
	}

	dir := cfg.OutputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	if err := g.removeHeaders(dir); err != nil {
		return err
	}

	for _, s := range proj.Structs() {
		path := filepath.Join(dir, s.HeaderName())
		g.opts.Logger.Printf("gen-priv: writing %d versions of %s to %s", len(s.Versions), s.Typedef, path)
		data, err := g.render(proj, s)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Typedef, err)
		}
		if err := g.writer.Write(path, data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

func (g *generatorImpl) removeHeaders(dir string) error {
	g.opts.Logger.Printf("gen-priv: clearing header files out of %s", dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == keptHeader || filepath.Ext(e.Name()) != ".h" {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove stale header: %w", err)
		}
	}
	return nil
}

func (g *generatorImpl) render(proj *project.Project, s *project.Struct) ([]byte, error) {
	if len(s.Versions) == 0 {
		return nil, fmt.Errorf("no layouts")
	}
	e := emitter{pr: proj.Printer(), s: s}

	copyrights := append(s.Copyrights(), fmt.Sprintf("Copyright © %d %s", g.opts.Now().Year(), g.opts.Attribution))
	data := headerData{
		ProjectName:   g.opts.ProjectName,
		Copyrights:    copyrights,
		License:       strings.Split(strings.TrimSuffix(lgpl3Header, "\n"), "\n"),
		Guard:         s.GuardName(),
		StructName:    s.StructName,
		Typedef:       s.Typedef,
		VersionIDFunc: e.versionIDFunc(),
	}

	prev := ""
	for i, sv := range s.Versions {
		def := e.definition(sv)
		layout := layoutData{ID: i, Definition: def}
		if i > 0 {
			lines, err := g.differ.Diff(prev, def)
			if err != nil {
				return nil, fmt.Errorf("diff layout %d: %w", i, err)
			}
			// The first hunk is always the range comment and struct name.
			if len(lines) > 4 {
				lines = lines[4:]
			} else {
				lines = nil
			}
			layout.HasDiff = true
			layout.Diff = strings.Join(lines, "\n")
		}
		prev = def
		data.Layouts = append(data.Layouts, layout)
	}

	for _, p := range s.Properties {
		data.Properties = append(data.Properties, e.propertyFunctions(p))
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "header.h.tmpl", data); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *fileWriter) Write(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0o644)
}
