package echoweb

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/catalog"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
	appfs "github.com/Bhaskar-J-Pathak/Acad-AI/fs"
)

const webTemplatesDir = "templates/web"

// page is the data every HTML template receives.
type page struct {
	AppName string
	Title   string
	Session *session.Session
	Premium bool
	Flash   string
	Data    interface{}
}

func (p page) Greeting() string {
	if p.Session == nil || p.Session.Email == "" {
		return "Learner"
	}
	if name := core.EmailLocalPart(p.Session.Email); name != "" {
		return name
	}
	return "Learner"
}

var templateFuncs = template.FuncMap{
	"priorityLabel": func(p catalog.Priority) string { return p.Label() },
	"plural": func(n int, singular, plural string) string {
		if n == 1 {
			return singular
		}
		return plural
	},
}

type renderer struct {
	appName   string
	templates map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(appName string) (*renderer, error) {
	r, err := parseWebTemplates(appfs.FS)
	if err != nil {
		return nil, err
	}
	r.appName = appName
	return r, nil
}

// parseWebTemplates loads every `<name>.gohtml` page, each extending `_base.gohtml`.
func parseWebTemplates(fsys fs.FS) (*renderer, error) {
	fps, err := fs.Glob(fsys, path.Join(webTemplatesDir, "*.gohtml"))
	if err != nil {
		return nil, err
	}

	r := &renderer{templates: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := template.New("_base.gohtml").Funcs(templateFuncs).ParseFS(fsys, path.Join(webTemplatesDir, "_base.gohtml"), fp)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", fname)
		}
		r.templates[strings.TrimSuffix(fname, ".gohtml")] = tmpl.Option("missingkey=error")
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	if p, ok := data.(page); ok {
		p.AppName = r.appName
		data = p
	}
	return tmpl.Execute(w, data)
}

// newPage prepares the template data for the current request.
func newPage(ctx echo.Context, title string, data interface{}) page {
	p := page{Title: title, Data: data}
	if sess, ok := contextSession(ctx); ok {
		p.Session = &sess
	}
	return p
}
