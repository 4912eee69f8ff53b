package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	errMissingUsers = errors.New(`missing "users" field`)
	errMissingID    = errors.New("entry without id")
)

// UsersService wraps the /users endpoints.
type UsersService struct {
	c *Client
}

type usersEnvelope struct {
	Users *[]User `json:"users"`
}

func (e usersEnvelope) unwrap(op string) ([]User, error) {
	if e.Users == nil {
		return nil, &DecodeError{Op: op, Err: errMissingUsers}
	}
	for i, u := range *e.Users {
		if u.ID == 0 {
			return nil, &DecodeError{Op: op, Err: fmt.Errorf("users[%d]: %w", i, errMissingID)}
		}
	}
	return *e.Users, nil
}

func (s *UsersService) Create(ctx context.Context, in CreateUserInput) (Result, error) {
	var out Result
	err := s.c.do(ctx, "users.create", http.MethodPost, "/users/create", nil, in, &out)
	return out, err
}

func (s *UsersService) Update(ctx context.Context, id int64, in UpdateUserInput) (Result, error) {
	var out Result
	err := s.c.do(ctx, "users.update", http.MethodPut, fmt.Sprintf("/users/update/%d", id), nil, in, &out)
	return out, err
}

func (s *UsersService) Delete(ctx context.Context, id int64) (Result, error) {
	var out Result
	err := s.c.do(ctx, "users.delete", http.MethodDelete, fmt.Sprintf("/users/delete/%d", id), nil, nil, &out)
	return out, err
}

// List sends both filter parameters on every call, empty when unset.
func (s *UsersService) List(ctx context.Context, filter UserFilter) ([]User, error) {
	query := url.Values{}
	query.Set("nombre", strings.TrimSpace(filter.Name))
	query.Set("email", strings.TrimSpace(filter.Email))
	return s.list(ctx, "users.list", "/users", query)
}

func (s *UsersService) ListAdministrators(ctx context.Context) ([]User, error) {
	return s.list(ctx, "users.administrators", fmt.Sprintf("/users/rol/%d", RoleAdministrator), nil)
}

func (s *UsersService) ListRegular(ctx context.Context) ([]User, error) {
	return s.list(ctx, "users.regular", fmt.Sprintf("/users/rol/%d", RoleUser), nil)
}

func (s *UsersService) list(ctx context.Context, op, path string, query url.Values) ([]User, error) {
	var env usersEnvelope
	if err := s.c.do(ctx, op, http.MethodGet, path, query, nil, &env); err != nil {
		return nil, err
	}
	return env.unwrap(op)
}
