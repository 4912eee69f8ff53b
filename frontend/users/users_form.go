package users

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/form"

	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/modal"
	"adminconsole/infrastructure/api"
)

// UserForm is the create/edit dialog input. Create switches on the
// password rules; edits never send a password.
type UserForm struct {
	Create          bool   `form:"-"`
	Name            string `form:"nombre" validate:"required,max=120"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required_if=Create true"`
	ConfirmPassword string `form:"confirmPassword" validate:"required_if=Create true,eqfield=Password"`
	RoleID          int    `form:"rol_id" validate:"required,oneof=1 2"`
	AdministratorID int64  `form:"administrador_id" validate:"required_if=RoleID 2"`
}

var decoder = newDecoder()

func newDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetMode(form.ModeExplicit)
	return d
}

// AdministratorField is the administrator selector's visibility for a role:
// shown and required for regular users, hidden otherwise.
func AdministratorField(role api.Role) html.FieldRule {
	if role == api.RoleUser {
		return html.FieldRule{Visible: true, Required: true}
	}
	return html.FieldRule{}
}

// roleRules is AdministratorField for every role the page can select.
func roleRules() map[string]html.FieldRule {
	return map[string]html.FieldRule{
		"":  AdministratorField(0),
		"1": AdministratorField(api.RoleAdministrator),
		"2": AdministratorField(api.RoleUser),
	}
}

// normalize trims input and clears the administrator when its field is
// hidden for the selected role.
func (f *UserForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	if !AdministratorField(api.Role(f.RoleID)).Visible {
		f.AdministratorID = 0
	}
}

func decodeUserForm(values url.Values, create bool) (UserForm, modal.FieldErrors) {
	f := UserForm{Create: create}
	errs := decode(&f, values)
	f.normalize()
	if !create {
		f.Password, f.ConfirmPassword = "", ""
	}
	return f, errs
}

// decode fills dst from values. Fields that fail to parse are reported
// under their form name.
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

// check validates f locally; decode errors take precedence over rule
// failures on the same field.
func check(f UserForm, decodeErrs modal.FieldErrors) modal.FieldErrors {
	return merge(decodeErrs, modal.Validate(f))
}

func merge(a, b modal.FieldErrors) modal.FieldErrors {
	if len(a) == 0 {
		return b
	}
	out := modal.FieldErrors{}
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (f UserForm) administratorID() *int64 {
	if f.AdministratorID <= 0 {
		return nil
	}
	id := f.AdministratorID
	return &id
}

func (f UserForm) createInput() api.CreateUserInput {
	return api.CreateUserInput{
		Name:            f.Name,
		Email:           f.Email,
		Password:        f.Password,
		RoleID:          api.Role(f.RoleID),
		AdministratorID: f.administratorID(),
	}
}

func (f UserForm) updateInput() api.UpdateUserInput {
	return api.UpdateUserInput{
		Name:            f.Name,
		Email:           f.Email,
		RoleID:          api.Role(f.RoleID),
		AdministratorID: f.administratorID(),
	}
}

func formFromUser(u api.User) UserForm {
	f := UserForm{Name: u.Name, Email: u.Email, RoleID: int(u.RoleID)}
	if u.AdministratorID != nil {
		f.AdministratorID = *u.AdministratorID
	}
	return f
}
