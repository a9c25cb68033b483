package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate())
}

func TestHasPermission(t *testing.T) {
	t.Run("admin holds the whole catalog", func(t *testing.T) {
		for _, p := range Catalog() {
			assert.True(t, HasPermission(RoleAdmin, p), "admin should hold %s", p)
		}
	})

	t.Run("matches the role table for every pair", func(t *testing.T) {
		for role, perms := range grants {
			held := make(map[Permission]bool, len(perms))
			for _, p := range perms {
				held[p] = true
			}
			for _, p := range Catalog() {
				assert.Equal(t, held[p], HasPermission(role, p), "role=%s permission=%s", role, p)
			}
		}
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		assert.False(t, HasPermission("nonexistent-role", FacilityRead))
		assert.False(t, HasPermission("", FacilityRead))
	})

	t.Run("caregiver cannot manage staff", func(t *testing.T) {
		assert.False(t, HasPermission(RoleCaregiver, StaffManage))
	})

	t.Run("nurse can write notes", func(t *testing.T) {
		assert.True(t, HasPermission(RoleNurse, EHRNotesWrite))
	})

	t.Run("owner lacks admin:all", func(t *testing.T) {
		assert.False(t, HasPermission(RoleOwner, AdminAll))
		assert.True(t, HasPermission(RoleOwner, StaffManage))
	})

	t.Run("role names are case sensitive", func(t *testing.T) {
		assert.False(t, HasPermission("Admin", FacilityRead))
	})

	t.Run("unknown permission panics", func(t *testing.T) {
		assert.Panics(t, func() {
			HasPermission(RoleAdmin, Permission("facility:reed"))
		})
	})
}

func TestPermissionsFor(t *testing.T) {
	assert.Equal(t, Catalog(), PermissionsFor(RoleAdmin))
	assert.Empty(t, PermissionsFor("janitor"))
	assert.NotNil(t, PermissionsFor("janitor"))

	caregiver := PermissionsFor(RoleCaregiver)
	assert.Equal(t, []Permission{
		ResidentList, ResidentRead,
		EHRMedicationsRead, EHRMedicationsWrite,
		EHRNotesRead, EHRNotesWrite,
		EHRADLRead, EHRADLWrite,
	}, caregiver)

	// callers must not be able to mutate the table
	caregiver[0] = AdminAll
	assert.False(t, HasPermission(RoleCaregiver, AdminAll))
}

func TestRoles(t *testing.T) {
	assert.Equal(t, []string{RoleAdmin, RoleOwner, RoleNurse, RoleCaregiver}, Roles())
	for _, role := range Roles() {
		assert.True(t, IsKnownRole(role))
	}
	assert.False(t, IsKnownRole("super_admin"))
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("ehr:notes:write")
	require.NoError(t, err)
	assert.Equal(t, EHRNotesWrite, p)
	assert.Equal(t, "Create notes", p.Label())

	_, err = ParsePermission("ehr:notes:delete")
	assert.ErrorIs(t, err, ErrUnknownPermission)
}

func TestCatalog(t *testing.T) {
	perms := Catalog()
	require.Len(t, perms, 17)
	assert.Equal(t, FacilityRead, perms[0])
	assert.Equal(t, AdminAll, perms[len(perms)-1])

	seen := make(map[Permission]bool)
	for _, p := range perms {
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
		assert.NotEmpty(t, p.Label(), "missing label for %s", p)
	}

	perms[0] = "mutated"
	assert.Equal(t, FacilityRead, Catalog()[0])
	assert.Equal(t, "", Permission("mutated").Label())
}

func TestStaticChecker(t *testing.T) {
	var c Checker = StaticChecker{}
	assert.True(t, c.HasPermission(RoleOwner, FacilityEdit))
	assert.False(t, c.HasPermission(RoleNurse, FacilityEdit))
}
