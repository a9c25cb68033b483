package rbac

import (
	"fmt"
	"sort"
)

// Role names
const (
	RoleAdmin     = "admin"
	RoleOwner     = "owner"
	RoleNurse     = "nurse"
	RoleCaregiver = "caregiver"
)

// grants is the static role table. admin is filled from the catalog in init.
var grants = map[string][]Permission{
	RoleOwner: {
		FacilityRead, FacilityEdit,
		ResidentList, ResidentRead, ResidentCreate, ResidentEdit,
		EHRMedicationsRead, EHRMedicationsWrite,
		EHRNotesRead, EHRNotesWrite,
		EHRADLRead, EHRADLWrite,
		StaffRead, StaffManage,
		FormsGenerate, FormsSign,
	},

	RoleNurse: {
		ResidentList, ResidentRead, ResidentEdit,
		EHRMedicationsRead, EHRMedicationsWrite,
		EHRNotesRead, EHRNotesWrite,
		EHRADLRead, EHRADLWrite,
		FormsGenerate,
	},

	RoleCaregiver: {
		ResidentList, ResidentRead,
		EHRMedicationsRead, EHRMedicationsWrite,
		EHRNotesRead, EHRNotesWrite,
		EHRADLRead, EHRADLWrite,
	},
}

// roleSets is the lookup form of grants.
var roleSets map[string]map[Permission]struct{}

func init() {
	grants[RoleAdmin] = Catalog()

	roleSets = make(map[string]map[Permission]struct{}, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		roleSets[role] = set
	}
}

// Roles returns the configured role names, highest privilege first.
func Roles() []string {
	roles := make([]string, 0, len(grants))
	for role := range grants {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		if len(grants[roles[i]]) != len(grants[roles[j]]) {
			return len(grants[roles[i]]) > len(grants[roles[j]])
		}
		return roles[i] < roles[j]
	})
	return roles
}

// IsKnownRole reports whether role has an entry in the role table.
func IsKnownRole(role string) bool {
	_, ok := roleSets[role]
	return ok
}

// Validate checks the role table against the catalog. It returns the first
// inconsistency found.
func Validate() error {
	for _, role := range Roles() {
		for _, p := range grants[role] {
			if !p.Valid() {
				return fmt.Errorf("role %q grants %w %q", role, ErrUnknownPermission, p)
			}
		}
	}

	admin := roleSets[RoleAdmin]
	if len(admin) != len(catalog) {
		return fmt.Errorf("role %q holds %d permissions, catalog has %d", RoleAdmin, len(admin), len(catalog))
	}
	for _, p := range Catalog() {
		if _, ok := admin[p]; !ok {
			return fmt.Errorf("role %q is missing %q", RoleAdmin, p)
		}
	}
	return nil
}
