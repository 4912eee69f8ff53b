package users

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"adminconsole/frontend/shared/html"
)

var usersTmpl = html.Must("users", `{{define "list"}}
<section class="page-head">
  <h1>Gestión de usuarios</h1>
  {{if .CanCreate}}<a class="btn btn-primary" href="/console/users{{query "nombre" .Filters.Name "email" .Filters.Email "size" .Rows.Size "modal" "create"}}">Crear usuario</a>{{end}}
</section>

<form id="filters" class="filters" method="GET" action="/console/users">
  <label>Nombre <input name="nombre" value="{{.Filters.Name}}" autocomplete="off"></label>
  <label>Email <input name="email" value="{{.Filters.Email}}" autocomplete="off"></label>
  <label>Por página
    <select name="size" onchange="this.form.requestSubmit()">
      {{$size := .Rows.Size}}{{range .Sizes}}<option value="{{.}}"{{if eq . $size}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <noscript><button class="btn" type="submit">Buscar</button></noscript>
</form>

<div id="results" data-phase="{{.Phase}}">
  <table class="table">
    <thead><tr><th>Nombre</th><th>Email</th><th>Rol</th><th>Administrador</th><th>Acciones</th></tr></thead>
    <tbody>
    {{range .Rows.Items}}
      <tr>
        <td>{{.Name}}</td>
        <td>{{.Email}}</td>
        <td>{{.RoleLabel}}</td>
        <td>{{.AdministratorName}}</td>
        <td class="actions">
          {{if $.CanViewProjects}}<a class="btn btn-sm" href="/console/users/{{.ID}}/projects">Proyectos</a>{{end}}
          {{if $.CanEdit}}<a class="btn btn-sm" href="/console/users{{query "nombre" $.Filters.Name "email" $.Filters.Email "page" $.Rows.Page "size" $.Rows.Size "modal" "edit" "id" .ID}}">Editar</a>{{end}}
          {{if $.CanDelete}}<form method="POST" action="/console/users/{{.ID}}/delete" class="inline">
            <input type="hidden" name="return" value="{{$.ReturnQuery}}">
            <button class="btn btn-sm btn-error" type="submit">Eliminar</button>
          </form>{{end}}
        </td>
      </tr>
    {{else}}
      <tr><td colspan="5" class="empty">{{if eq .Phase "failed"}}No se pudieron cargar los usuarios.{{else}}No hay usuarios que coincidan con la búsqueda.{{end}}</td></tr>
    {{end}}
    </tbody>
  </table>
  {{template "pager" .}}
</div>
{{end}}

{{define "pager"}}
<nav class="pager">
  <span>{{.Rows.From}}–{{.Rows.To}} de {{.Rows.Total}}</span>
  {{if .Rows.HasPrev}}<a class="btn btn-sm" href="/console/users{{query "nombre" .Filters.Name "email" .Filters.Email "page" .Rows.Prev "size" .Rows.Size}}">Anterior</a>{{end}}
  <span>Página {{.Rows.Page}} de {{.Rows.Pages}}</span>
  {{if .Rows.HasNext}}<a class="btn btn-sm" href="/console/users{{query "nombre" .Filters.Name "email" .Filters.Email "page" .Rows.Next "size" .Rows.Size}}">Siguiente</a>{{end}}
</nav>
{{end}}

{{define "modal"}}
<dialog open class="modal">
  <div class="modal-box">
    <h3>{{.Title}}</h3>
    {{if .Error}}<p class="alert alert-error" role="alert">{{.Error}}</p>{{end}}
    <form id="user-form" method="POST" action="{{.Action}}" class="stack" novalidate>
      <input type="hidden" name="return" value="{{.ReturnQuery}}">
      <input type="hidden" name="mode" value="{{.Mode}}">
      <label>Nombre
        <input name="nombre" value="{{.Form.Name}}" required{{if .Errors.Has "nombre"}} aria-invalid="true"{{end}}>
        <small class="field-error">{{index .Errors "nombre"}}</small>
      </label>
      <label>Email
        <input name="email" type="email" value="{{.Form.Email}}" required{{if .Errors.Has "email"}} aria-invalid="true"{{end}}>
        <small class="field-error">{{index .Errors "email"}}</small>
      </label>
      {{if eq .Mode "create"}}
      <label>Contraseña
        <input name="password" type="password" autocomplete="new-password" required{{if .Errors.Has "password"}} aria-invalid="true"{{end}}>
        <small class="field-error">{{index .Errors "password"}}</small>
      </label>
      <label>Confirmar contraseña
        <input name="confirmPassword" type="password" autocomplete="new-password" required{{if .Errors.Has "confirmPassword"}} aria-invalid="true"{{end}}>
        <small class="field-error" data-error-for="confirmPassword">{{index .Errors "confirmPassword"}}</small>
      </label>
      {{end}}
      <label>Rol
        <select name="rol_id" required{{if .Errors.Has "rol_id"}} aria-invalid="true"{{end}}>
          <option value="">Selecciona un rol</option>
          <option value="1"{{if eq .Form.RoleID 1}} selected{{end}}>Administrador</option>
          <option value="2"{{if eq .Form.RoleID 2}} selected{{end}}>Usuario</option>
        </select>
        <small class="field-error">{{index .Errors "rol_id"}}</small>
      </label>
      <label id="administrator-field"{{if not .AdminField.Visible}} hidden{{end}}>Administrador
        <select name="administrador_id"{{if .AdminField.Required}} required{{end}}{{if .Errors.Has "administrador_id"}} aria-invalid="true"{{end}}>
          <option value="">Selecciona un administrador</option>
          {{$selected := .Form.AdministratorID}}{{range .Admins}}<option value="{{.ID}}"{{if eq .ID $selected}} selected{{end}}>{{.Name}}</option>{{end}}
        </select>
        <small class="field-error">{{index .Errors "administrador_id"}}</small>
      </label>
      <div class="modal-action">
        <a class="btn" href="{{back "/console/users" .ReturnQuery}}">Cancelar</a>
        <button class="btn btn-primary" type="submit">Guardar</button>
      </div>
    </form>
  </div>
</dialog>
{{end}}

{{define "projects"}}
<section class="page-head">
  <h1>Proyectos de {{.UserName}}</h1>
  <a class="btn" href="/console/users">Volver a usuarios</a>
</section>
<table class="table">
  <thead><tr><th>Nombre</th><th>Descripción</th><th>Administrador</th><th></th></tr></thead>
  <tbody>
  {{range .Rows}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.Desc}}</td>
      <td>{{.OwnerName}}</td>
      <td>{{if $.CanOpenDetail}}<a class="btn btn-sm" href="/console/projects/{{.ID}}">Ver detalle</a>{{end}}</td>
    </tr>
  {{else}}
    <tr><td colspan="4" class="empty">El usuario no tiene proyectos asignados.</td></tr>
  {{end}}
  </tbody>
</table>
{{end}}`)

// UsersPage is the users list with its filters and optional dialog.
func UsersPage(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Template(usersTmpl, "list", data).Render(ctx, w); err != nil {
			return err
		}
		if err := html.FilterScript("filters", data.Settings.FilterDebounce).Render(ctx, w); err != nil {
			return err
		}
		if data.Modal == nil {
			return nil
		}
		if err := html.Template(usersTmpl, "modal", data.Modal).Render(ctx, w); err != nil {
			return err
		}
		if err := html.ConditionalFieldScript("user-form", "rol_id", "administrator-field", data.Modal.RoleRules).Render(ctx, w); err != nil {
			return err
		}
		if data.Modal.Mode != "create" {
			return nil
		}
		return html.ConfirmScript("user-form", "confirmPassword", "/console/users/validate", data.Settings.ConfirmDebounce).Render(ctx, w)
	})
	return html.Layout(data.Page, body)
}

func UserProjectsPage(data ProjectsPageData) templ.Component {
	return html.Layout(data.Page, html.Template(usersTmpl, "projects", data))
}
