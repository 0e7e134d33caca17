package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var viewsFS embed.FS

var indexTmpl *template.Template

func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	if tmpl.Lookup("index.html") == nil {
		return errors.New("views: index.html template missing")
	}
	indexTmpl = tmpl
	return nil
}

// LoadTemplates parses the embedded templates. Call it once at startup and
// refuse to serve if it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type Route struct {
	Path        string
	Description string
}

type IndexData struct {
	HasData   bool
	FirstDate string
	LastDate  string
	Routes    []Route
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
