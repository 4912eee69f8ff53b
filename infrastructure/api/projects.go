package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	errMissingProjects = errors.New(`missing "projects" field`)
	errMissingProject  = errors.New(`missing "project" field`)
	errMissingMembers  = errors.New(`project without "usuarios" field`)
)

// ProjectsService wraps the /projects endpoints.
type ProjectsService struct {
	c *Client
}

type projectsEnvelope struct {
	Projects *[]Project `json:"projects"`
}

// projectDetail keeps usuarios as a pointer so a missing field can be told
// apart from an empty assignment list.
type projectDetail struct {
	Project *struct {
		ID              int64   `json:"id"`
		Name            string  `json:"nombre"`
		Description     string  `json:"descripcion"`
		AdministratorID int64   `json:"administrador_id"`
		Users           *[]User `json:"usuarios"`
	} `json:"project"`
}

func (s *ProjectsService) Create(ctx context.Context, in CreateProjectInput) (Result, error) {
	var out Result
	err := s.c.do(ctx, "projects.create", http.MethodPost, "/projects/create", nil, in, &out)
	return out, err
}

func (s *ProjectsService) Update(ctx context.Context, id int64, in UpdateProjectInput) (Result, error) {
	var out Result
	err := s.c.do(ctx, "projects.update", http.MethodPut, fmt.Sprintf("/projects/%d", id), nil, in, &out)
	return out, err
}

func (s *ProjectsService) Delete(ctx context.Context, id int64) (Result, error) {
	var out Result
	err := s.c.do(ctx, "projects.delete", http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil, &out)
	return out, err
}

func (s *ProjectsService) List(ctx context.Context) ([]Project, error) {
	return s.list(ctx, "projects.list", "/projects")
}

// ListByUser returns the projects userID is assigned to.
func (s *ProjectsService) ListByUser(ctx context.Context, userID int64) ([]Project, error) {
	return s.list(ctx, "projects.by_user", fmt.Sprintf("/projects/user/%d", userID))
}

// Get returns one project with its assigned users.
func (s *ProjectsService) Get(ctx context.Context, id int64) (Project, error) {
	const op = "projects.get"
	var env projectDetail
	if err := s.c.do(ctx, op, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, nil, &env); err != nil {
		return Project{}, err
	}
	if env.Project == nil {
		return Project{}, &DecodeError{Op: op, Err: errMissingProject}
	}
	if env.Project.Users == nil {
		return Project{}, &DecodeError{Op: op, Err: errMissingMembers}
	}
	p := Project{
		ID:              env.Project.ID,
		Name:            env.Project.Name,
		Description:     env.Project.Description,
		AdministratorID: env.Project.AdministratorID,
		Users:           *env.Project.Users,
	}
	if p.ID == 0 {
		p.ID = id
	}
	for i, u := range p.Users {
		if u.ID == 0 {
			return Project{}, &DecodeError{Op: op, Err: fmt.Errorf("usuarios[%d]: %w", i, errMissingID)}
		}
	}
	return p, nil
}

func (s *ProjectsService) Assign(ctx context.Context, projectID int64, userIDs []int64) (Result, error) {
	var out Result
	body := assignRequest{UserIDs: userIDs}
	if body.UserIDs == nil {
		body.UserIDs = []int64{}
	}
	err := s.c.do(ctx, "projects.assign", http.MethodPost, fmt.Sprintf("/projects/%d/users", projectID), nil, body, &out)
	return out, err
}

func (s *ProjectsService) Unassign(ctx context.Context, projectID, userID int64) (Result, error) {
	var out Result
	err := s.c.do(ctx, "projects.unassign", http.MethodDelete, fmt.Sprintf("/projects/%d/users/%d", projectID, userID), nil, nil, &out)
	return out, err
}

func (s *ProjectsService) list(ctx context.Context, op, path string) ([]Project, error) {
	var env projectsEnvelope
	if err := s.c.do(ctx, op, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Projects == nil {
		return nil, &DecodeError{Op: op, Err: errMissingProjects}
	}
	for i, p := range *env.Projects {
		if p.ID == 0 {
			return nil, &DecodeError{Op: op, Err: fmt.Errorf("projects[%d]: %w", i, errMissingID)}
		}
	}
	return *env.Projects, nil
}
