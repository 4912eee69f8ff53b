package activity

import (
	"github.com/a-h/templ"

	"adminconsole/frontend/shared/html"
)

var activityTmpl = html.Must("activity", `{{define "page"}}
<section class="page-head"><h1>Actividad</h1></section>

<form class="filters" method="GET" action="/console/audit">
  <label>Entidad
    <select name="entity" onchange="this.form.submit()">
      {{$current := .Filter.EntityType}}{{range .EntityTypes}}<option value="{{.Value}}"{{if eq .Value $current}} selected{{end}}>{{.Label}}</option>{{end}}
    </select>
  </label>
  <input type="hidden" name="size" value="{{.Rows.Size}}">
  <noscript><button class="btn" type="submit">Filtrar</button></noscript>
</form>

<table class="table">
  <thead><tr><th>Fecha</th><th>Operador</th><th>Acción</th><th>Entidad</th><th>Mensaje</th><th>Detalle</th></tr></thead>
  <tbody>
  {{range .Rows.Items}}
    <tr>
      <td>{{.CreatedAt}}</td>
      <td>{{.Actor}}</td>
      <td><code>{{.Action}}</code></td>
      <td>{{.EntityType}} {{.EntityID}}</td>
      <td>{{.Message}}</td>
      <td>
        {{if or .BeforeJSON .AfterJSON}}<details>
          <summary>Ver</summary>
          {{if .BeforeJSON}}<pre>{{.BeforeJSON}}</pre>{{end}}
          {{if .AfterJSON}}<pre>{{.AfterJSON}}</pre>{{end}}
          {{if .RequestID}}<small>{{.RequestID}}</small>{{end}}
        </details>{{end}}
      </td>
    </tr>
  {{else}}
    <tr><td colspan="6" class="empty">Sin actividad registrada.</td></tr>
  {{end}}
  </tbody>
</table>
<nav class="pager">
  <span>{{.Rows.From}}–{{.Rows.To}} de {{.Rows.Total}}</span>
  {{if .Rows.HasPrev}}<a class="btn btn-sm" href="/console/audit{{query "entity" .Filter.EntityType "page" .Rows.Prev "size" .Rows.Size}}">Anterior</a>{{end}}
  {{if .Rows.HasNext}}<a class="btn btn-sm" href="/console/audit{{query "entity" .Filter.EntityType "page" .Rows.Next "size" .Rows.Size}}">Siguiente</a>{{end}}
</nav>
{{end}}`)

func ActivityPage(data PageData) templ.Component {
	return html.Layout(data.Page, html.Template(activityTmpl, "page", data))
}
