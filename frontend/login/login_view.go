package login

import (
	"github.com/a-h/templ"

	"adminconsole/frontend/shared/html"
)

var loginTmpl = html.Must("login", `{{define "body"}}
<section class="card narrow">
  <h1>Iniciar sesión</h1>
  {{if .}}<p class="alert alert-error" role="alert">{{.}}</p>{{end}}
  <form method="POST" action="/login" class="stack">
    <label>Usuario <input name="username" autocomplete="username" required autofocus></label>
    <label>Contraseña <input name="password" type="password" autocomplete="current-password" required></label>
    <button class="btn btn-primary" type="submit">Entrar</button>
  </form>
</section>
{{end}}`)

func GetLoginScreen(errorMessage string) templ.Component {
	return html.Layout(html.Page{Title: "Iniciar sesión"}, html.Template(loginTmpl, "body", errorMessage))
}
