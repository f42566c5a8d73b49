package service

import (
	"context"

	"github.com/webservicios/backoffice/internal/logging"
)

// ResolvedRole is a role name expanded to the permission names it grants.
type ResolvedRole struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// ResolveRoles expands role names into their granted permissions. Input
// order is preserved. Names with no backing role are dropped with a log
// line rather than failing the resolution: role deletion must not lock out
// accounts still referencing the old name.
func (s *AuthService) ResolveRoles(ctx context.Context, names []string) ([]ResolvedRole, error) {
	roles, err := s.Repo.FindRolesByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]string, len(roles))
	for _, role := range roles {
		perms := make([]string, 0, len(role.Permissions))
		for _, p := range role.Permissions {
			perms = append(perms, p.Name)
		}
		byName[role.Name] = perms
	}

	l := logging.FromContext(ctx)
	resolved := make([]ResolvedRole, 0, len(names))
	for _, name := range names {
		perms, ok := byName[name]
		if !ok {
			l.Warn("role_resolution_dropped", "role", name, "reason", "role no longer exists")
			continue
		}
		resolved = append(resolved, ResolvedRole{Name: name, Permissions: perms})
	}
	return resolved, nil
}

// ResolvePermissions flattens ResolveRoles into a deduplicated permission
// list, first occurrence wins the position.
func (s *AuthService) ResolvePermissions(ctx context.Context, names []string) ([]string, error) {
	resolved, err := s.ResolveRoles(ctx, names)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	for _, role := range resolved {
		for _, perm := range role.Permissions {
			if _, ok := seen[perm]; ok {
				continue
			}
			seen[perm] = struct{}{}
			out = append(out, perm)
		}
	}
	return out, nil
}
