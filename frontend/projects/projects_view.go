package projects

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"adminconsole/frontend/shared/html"
)

var projectsTmpl = html.Must("projects", `{{define "list"}}
<section class="page-head">
  <h1>Gestión de proyectos</h1>
  {{if .CanCreate}}<a class="btn btn-primary" href="/console/projects{{query "nombre" .Filters.Name "owner" .Filters.Owner "size" .Rows.Size "modal" "create"}}">Crear proyecto</a>{{end}}
</section>

<form id="filters" class="filters" method="GET" action="/console/projects">
  <label>Nombre <input name="nombre" value="{{.Filters.Name}}" autocomplete="off"></label>
  <label>Administrador <input name="owner" value="{{.Filters.Owner}}" autocomplete="off"></label>
  <label>Por página
    <select name="size" onchange="this.form.requestSubmit()">
      {{$size := .Rows.Size}}{{range .Sizes}}<option value="{{.}}"{{if eq . $size}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <noscript><button class="btn" type="submit">Buscar</button></noscript>
</form>

<div id="results" data-phase="{{.Phase}}">
  <table class="table">
    <thead><tr><th>Nombre</th><th>Descripción</th><th>Administrador</th><th>Acciones</th></tr></thead>
    <tbody>
    {{range .Rows.Items}}
      <tr>
        <td>{{if $.CanOpenDetail}}<a href="/console/projects/{{.ID}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</td>
        <td>{{.Description}}</td>
        <td>{{.OwnerName}}</td>
        <td class="actions">
          {{if $.CanEdit}}<a class="btn btn-sm" href="/console/projects{{query "nombre" $.Filters.Name "owner" $.Filters.Owner "page" $.Rows.Page "size" $.Rows.Size "modal" "edit" "id" .ID}}">Editar</a>{{end}}
          {{if $.CanDelete}}<form method="POST" action="/console/projects/{{.ID}}/delete" class="inline">
            <input type="hidden" name="return" value="{{$.ReturnQuery}}">
            <button class="btn btn-sm btn-error" type="submit">Eliminar</button>
          </form>{{end}}
        </td>
      </tr>
    {{else}}
      <tr><td colspan="4" class="empty">{{if eq .Phase "failed"}}No se pudieron cargar los proyectos.{{else}}No hay proyectos que coincidan con la búsqueda.{{end}}</td></tr>
    {{end}}
    </tbody>
  </table>
  <nav class="pager">
    <span>{{.Rows.From}}–{{.Rows.To}} de {{.Rows.Total}}</span>
    {{if .Rows.HasPrev}}<a class="btn btn-sm" href="/console/projects{{query "nombre" .Filters.Name "owner" .Filters.Owner "page" .Rows.Prev "size" .Rows.Size}}">Anterior</a>{{end}}
    <span>Página {{.Rows.Page}} de {{.Rows.Pages}}</span>
    {{if .Rows.HasNext}}<a class="btn btn-sm" href="/console/projects{{query "nombre" .Filters.Name "owner" .Filters.Owner "page" .Rows.Next "size" .Rows.Size}}">Siguiente</a>{{end}}
  </nav>
</div>
{{end}}

{{define "modal"}}
<dialog open class="modal">
  <div class="modal-box">
    <h3>{{.Title}}</h3>
    {{if .Error}}<p class="alert alert-error" role="alert">{{.Error}}</p>{{end}}
    <form id="project-form" method="POST" action="{{.Action}}" class="stack" novalidate>
      <input type="hidden" name="return" value="{{.ReturnQuery}}">
      <label>Nombre
        <input name="nombre" value="{{.Form.Name}}" required{{if .Errors.Has "nombre"}} aria-invalid="true"{{end}}>
        <small class="field-error">{{index .Errors "nombre"}}</small>
      </label>
      <label>Descripción
        <textarea name="descripcion" rows="3" required{{if .Errors.Has "descripcion"}} aria-invalid="true"{{end}}>{{.Form.Description}}</textarea>
        <small class="field-error">{{index .Errors "descripcion"}}</small>
      </label>
      <label>Administrador
        <select name="administrador_id" required{{if .Errors.Has "administrador_id"}} aria-invalid="true"{{end}}>
          <option value="">Selecciona un administrador</option>
          {{$selected := .Form.AdministratorID}}{{range .Admins}}<option value="{{.ID}}"{{if eq .ID $selected}} selected{{end}}>{{.Name}}</option>{{end}}
        </select>
        <small class="field-error">{{index .Errors "administrador_id"}}</small>
      </label>
      <div class="modal-action">
        <a class="btn" href="{{back "/console/projects" .ReturnQuery}}">Cancelar</a>
        <button class="btn btn-primary" type="submit">Guardar</button>
      </div>
    </form>
  </div>
</dialog>
{{end}}

{{define "detail"}}
<section class="page-head">
  <h1>{{if .Loaded}}{{.Name}}{{else}}Proyecto #{{.ProjectID}}{{end}}</h1>
  <div class="actions">
    <a class="btn" href="/console/projects">Volver a proyectos</a>
    {{if and .Loaded .CanRoster}}<a class="btn" href="/console/projects/{{.ProjectID}}/roster.pdf" target="_blank">Imprimir</a>{{end}}
    {{if and .Loaded .CanAssign}}<a class="btn btn-primary" href="/console/projects/{{.ProjectID}}?modal=assign">Asignar usuarios</a>{{end}}
  </div>
</section>
{{if .Loaded}}
<dl class="project-summary">
  <dt>Descripción</dt><dd>{{.Description}}</dd>
  <dt>Administrador</dt><dd>{{.OwnerName}}</dd>
</dl>
<h2>Usuarios asignados</h2>
<table class="table">
  <thead><tr><th>Nombre</th><th>Email</th><th></th></tr></thead>
  <tbody>
  {{range .Members}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.Email}}</td>
      <td>{{if $.CanUnassign}}<form method="POST" action="/console/projects/{{$.ProjectID}}/users/{{.ID}}/delete" class="inline" onsubmit="return confirm('¿Estás seguro?')">
        <button class="btn btn-sm btn-error" type="submit">Desasignar</button>
      </form>{{end}}</td>
    </tr>
  {{else}}
    <tr><td colspan="3" class="empty">El proyecto no tiene usuarios asignados.</td></tr>
  {{end}}
  </tbody>
</table>
{{end}}
{{end}}

{{define "assign"}}
<dialog open class="modal">
  <div class="modal-box">
    <h3>Asignar usuarios</h3>
    {{if .Error}}<p class="alert alert-error" role="alert">{{.Error}}</p>{{end}}
    <form id="assign-form" method="POST" action="/console/projects/{{.ProjectID}}/users" class="stack">
      {{range .Available}}
      <label class="check"><input type="checkbox" name="userIds" value="{{.ID}}"{{if $.Checked .ID}} checked{{end}}> {{.Name}} <small>{{.Email}}</small></label>
      {{else}}
      <p class="empty">No hay usuarios disponibles para asignar.</p>
      {{end}}
      <div class="modal-action">
        <a class="btn" href="/console/projects/{{.ProjectID}}">Cancelar</a>
        <button class="btn btn-primary" type="submit"{{if not .Available}} disabled{{end}}>Asignar</button>
      </div>
    </form>
  </div>
</dialog>
{{end}}`)

// ProjectsPage is the projects list with its filters and optional dialog.
func ProjectsPage(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Template(projectsTmpl, "list", data).Render(ctx, w); err != nil {
			return err
		}
		if err := html.FilterScript("filters", data.Settings.FilterDebounce).Render(ctx, w); err != nil {
			return err
		}
		if data.Modal == nil {
			return nil
		}
		return html.Template(projectsTmpl, "modal", data.Modal).Render(ctx, w)
	})
	return html.Layout(data.Page, body)
}

// ProjectDetailPage shows one project and, when open, the assign dialog.
func ProjectDetailPage(data DetailPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Template(projectsTmpl, "detail", data).Render(ctx, w); err != nil {
			return err
		}
		if data.Assign == nil {
			return nil
		}
		return html.Template(projectsTmpl, "assign", data.Assign).Render(ctx, w)
	})
	return html.Layout(data.Page, body)
}
