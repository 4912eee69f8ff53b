package lookup

import (
	"sort"

	"adminconsole/infrastructure/api"
)

// UnknownAdministrator is shown for ids absent from the map.
const UnknownAdministrator = "Administrador desconocido"

// AdminNames maps administrator id to display name. A map is built in full
// from one administrator-list response and never merged with another.
type AdminNames struct {
	names map[int64]string
}

// Option is one entry of an administrator selector.
type Option struct {
	ID   int64
	Name string
}

// BuildAdminNames returns a fresh map with one entry per distinct id. On a
// repeated id the later entry wins.
func BuildAdminNames(admins []api.User) AdminNames {
	names := make(map[int64]string, len(admins))
	for _, a := range admins {
		names[a.ID] = a.Name
	}
	return AdminNames{names: names}
}

// Name returns the administrator's name or UnknownAdministrator.
func (m AdminNames) Name(id int64) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return UnknownAdministrator
}

// NameOf is Name for an optional id; nil yields "".
func (m AdminNames) NameOf(id *int64) string {
	if id == nil {
		return ""
	}
	return m.Name(*id)
}

func (m AdminNames) Len() int { return len(m.names) }

// Options lists the map sorted by name, then id.
func (m AdminNames) Options() []Option {
	out := make([]Option, 0, len(m.names))
	for id, name := range m.names {
		out = append(out, Option{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
