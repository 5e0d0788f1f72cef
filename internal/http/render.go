package http

import (
	"embed"
	"html/template"
	"io"

	"github.com/jmehdipour/dialer/internal/telephony"
	echo "github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// renderer wires html/template into echo. The cleanError func mirrors the
// transform used by log cleanup so the page never shows raw vendor noise.
type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	t := template.New("").Funcs(template.FuncMap{
		"cleanError": telephony.CleanError,
	})
	return &renderer{
		templates: template.Must(t.ParseFS(templateFS, "templates/*.html")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
