package html

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"adminconsole/frontend/shared/nav"
)

// Page is the chrome shared by every console screen.
type Page struct {
	Title         string
	Nav           nav.TopNavData
	Status        string
	Error         string
	ToastDuration time.Duration
}

var layoutTmpl = Must("layout", `{{define "head"}}<!doctype html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · Consola</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body>
<header class="navbar">
  <span class="brand">Consola de administración</span>
  <nav>{{range .Nav.Links}}<a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}</nav>
  {{if .Nav.Username}}<form method="POST" action="/logout" class="logout">
    <span>{{.Nav.Username}} ({{.Nav.Role}})</span>
    <button class="btn btn-sm" type="submit">Salir</button>
  </form>{{end}}
</header>
<div id="toasts" class="toasts" data-duration="{{.ToastDuration.Milliseconds}}">
  {{if .Status}}<div class="toast toast-success" role="status">{{.Status}}<button type="button" class="toast-close" aria-label="Cerrar">×</button></div>{{end}}
  {{if .Error}}<div class="toast toast-error" role="alert">{{.Error}}<button type="button" class="toast-close" aria-label="Cerrar">×</button></div>{{end}}
</div>
<main class="container">
{{end}}
{{define "tail"}}</main>
</body>
</html>
{{end}}`)

// Layout wraps body in the console chrome, toasts included.
func Layout(p Page, body templ.Component) templ.Component {
	if p.ToastDuration <= 0 {
		p.ToastDuration = 5 * time.Second
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := layoutTmpl.ExecuteTemplate(w, "head", p); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, CSRFFormScript()+ToastScript()); err != nil {
			return err
		}
		return layoutTmpl.ExecuteTemplate(w, "tail", p)
	})
}
