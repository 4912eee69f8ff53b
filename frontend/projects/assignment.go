package projects

import "adminconsole/infrastructure/api"

// AvailableUsers returns the users of all that are not in assigned, in the
// order of all.
func AvailableUsers(all, assigned []api.User) []api.User {
	taken := make(map[int64]struct{}, len(assigned))
	for _, u := range assigned {
		taken[u.ID] = struct{}{}
	}
	out := make([]api.User, 0, len(all))
	for _, u := range all {
		if _, ok := taken[u.ID]; ok {
			continue
		}
		out = append(out, u)
	}
	return out
}
