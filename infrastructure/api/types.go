package api

import "encoding/json"

// Role is the backend's numeric role identifier.
type Role int

const (
	RoleAdministrator Role = 1
	RoleUser          Role = 2
)

// Label is the display name shown in the users table.
func (r Role) Label() string {
	switch r {
	case RoleAdministrator:
		return "Administrador"
	case RoleUser:
		return "Usuario"
	default:
		return "Desconocido"
	}
}

// Valid reports whether r is a role the backend knows.
func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleUser
}

// User as returned by the users endpoints. AdministratorID is only
// meaningful for RoleUser.
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"nombre"`
	Email           string `json:"email"`
	RoleID          Role   `json:"rol_id"`
	AdministratorID *int64 `json:"administrador_id,omitempty"`
}

// Project as returned by the projects endpoints. Users is only populated by
// the detail endpoint.
type Project struct {
	ID              int64  `json:"id"`
	Name            string `json:"nombre"`
	Description     string `json:"descripcion"`
	AdministratorID int64  `json:"administrador_id"`
	Users           []User `json:"usuarios,omitempty"`
}

// UserFilter is sent as the nombre/email query of the users list.
type UserFilter struct {
	Name  string
	Email string
}

type CreateUserInput struct {
	Name            string `json:"nombre"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	RoleID          Role   `json:"rol_id"`
	AdministratorID *int64 `json:"administrador_id,omitempty"`
}

// UpdateUserInput is a partial update; zero fields are not sent.
type UpdateUserInput struct {
	Name            string `json:"nombre,omitempty"`
	Email           string `json:"email,omitempty"`
	RoleID          Role   `json:"rol_id,omitempty"`
	AdministratorID *int64 `json:"administrador_id,omitempty"`
}

// MarshalJSON sends an explicit null administrador_id for administrators
// so the backend drops any owner the user had as a regular user.
func (in UpdateUserInput) MarshalJSON() ([]byte, error) {
	type partial UpdateUserInput
	if in.RoleID != RoleAdministrator {
		return json.Marshal(partial(in))
	}
	return json.Marshal(struct {
		partial
		AdministratorID *int64 `json:"administrador_id"`
	}{partial: partial(in)})
}

type CreateProjectInput struct {
	Name            string `json:"nombre"`
	Description     string `json:"descripcion"`
	AdministratorID int64  `json:"administrador_id"`
}

// UpdateProjectInput is a partial update; zero fields are not sent.
type UpdateProjectInput struct {
	Name            string `json:"nombre,omitempty"`
	Description     string `json:"descripcion,omitempty"`
	AdministratorID int64  `json:"administrador_id,omitempty"`
}

// Result is the acknowledgement of a mutation. ID is the affected entity
// when the backend reports one, either top level or under user/project.
type Result struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func (r *Result) UnmarshalJSON(b []byte) error {
	type entity struct {
		ID int64 `json:"id"`
	}
	var raw struct {
		Message string  `json:"message"`
		ID      int64   `json:"id"`
		User    *entity `json:"user"`
		Project *entity `json:"project"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Message, r.ID = raw.Message, raw.ID
	switch {
	case r.ID > 0:
	case raw.User != nil:
		r.ID = raw.User.ID
	case raw.Project != nil:
		r.ID = raw.Project.ID
	}
	return nil
}

type assignRequest struct {
	UserIDs []int64 `json:"userIds"`
}
