package projects

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/form"

	"adminconsole/frontend/shared/modal"
	"adminconsole/infrastructure/api"
)

// ProjectForm is the create/edit project dialog input.
type ProjectForm struct {
	Name            string `form:"nombre" validate:"required,max=120"`
	Description     string `form:"descripcion" validate:"required,max=500"`
	AdministratorID int64  `form:"administrador_id" validate:"required,gt=0"`
}

// AssignForm is the assign dialog input.
type AssignForm struct {
	UserIDs []int64 `form:"userIds"`
}

var decoder = newDecoder()

func newDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetMode(form.ModeExplicit)
	return d
}

func decodeProjectForm(values url.Values) (ProjectForm, modal.FieldErrors) {
	var f ProjectForm
	errs := decode(&f, values)
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	return f, errs
}

// decodeAssignForm returns the distinct positive ids in submission order.
func decodeAssignForm(values url.Values) (AssignForm, modal.FieldErrors) {
	var f AssignForm
	errs := decode(&f, values)
	seen := make(map[int64]struct{}, len(f.UserIDs))
	ids := f.UserIDs[:0]
	for _, id := range f.UserIDs {
		if _, dup := seen[id]; dup || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	f.UserIDs = ids
	return f, errs
}

func decode(dst any, values url.Values) modal.FieldErrors {
	err := decoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	var decodeErrs form.DecodeErrors
	if !errors.As(err, &decodeErrs) {
		return modal.FieldErrors{"_": "Formulario no válido"}
	}
	out := make(modal.FieldErrors, len(decodeErrs))
	for field := range decodeErrs {
		out[field] = "Valor no válido"
	}
	return out
}

func check(f ProjectForm, decodeErrs modal.FieldErrors) modal.FieldErrors {
	errs := modal.Validate(f)
	if len(decodeErrs) == 0 {
		return errs
	}
	if errs == nil {
		errs = modal.FieldErrors{}
	}
	for k, v := range decodeErrs {
		errs[k] = v
	}
	return errs
}

func (f ProjectForm) createInput() api.CreateProjectInput {
	return api.CreateProjectInput{Name: f.Name, Description: f.Description, AdministratorID: f.AdministratorID}
}

func (f ProjectForm) updateInput() api.UpdateProjectInput {
	return api.UpdateProjectInput{Name: f.Name, Description: f.Description, AdministratorID: f.AdministratorID}
}

func formFromProject(p api.Project) ProjectForm {
	return ProjectForm{Name: p.Name, Description: p.Description, AdministratorID: p.AdministratorID}
}
