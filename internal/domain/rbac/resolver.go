package rbac

import "fmt"

// HasPermission reports whether role holds permission. Unknown roles hold
// nothing. A permission outside the catalog is a programming error and panics.
func HasPermission(role string, permission Permission) bool {
	if !permission.Valid() {
		panic(fmt.Sprintf("rbac: %v %q", ErrUnknownPermission, string(permission)))
	}
	_, ok := roleSets[role][permission]
	return ok
}

// PermissionsFor returns the permissions held by role in catalog order. It
// returns an empty slice for an unknown role.
func PermissionsFor(role string) []Permission {
	set := roleSets[role]
	out := make([]Permission, 0, len(set))
	for _, e := range catalog {
		if _, ok := set[e.permission]; ok {
			out = append(out, e.permission)
		}
	}
	return out
}

// Checker is satisfied by anything that can answer a role/permission query.
// Middleware depends on it rather than on the package-level table.
type Checker interface {
	HasPermission(role string, permission Permission) bool
}

// StaticChecker answers from the compiled-in role table.
type StaticChecker struct{}

func (StaticChecker) HasPermission(role string, permission Permission) bool {
	return HasPermission(role, permission)
}
