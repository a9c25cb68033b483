package rbac

import (
	"errors"
	"fmt"
)

// ErrUnknownPermission is returned when a string does not name a catalog permission.
var ErrUnknownPermission = errors.New("unknown permission")

// Permission identifies a capability in the portal. The set is closed: only
// the constants below are valid.
type Permission string

// Facility
const (
	FacilityRead Permission = "facility:read"
	FacilityEdit Permission = "facility:edit"
)

// Residents (PHI)
const (
	ResidentList   Permission = "resident:list"
	ResidentRead   Permission = "resident:read"
	ResidentCreate Permission = "resident:create"
	ResidentEdit   Permission = "resident:edit"
)

// EHR (PHI)
const (
	EHRMedicationsRead  Permission = "ehr:medications:read"
	EHRMedicationsWrite Permission = "ehr:medications:write"
	EHRNotesRead        Permission = "ehr:notes:read"
	EHRNotesWrite       Permission = "ehr:notes:write"
	EHRADLRead          Permission = "ehr:adl:read"
	EHRADLWrite         Permission = "ehr:adl:write"
)

// Staff, forms and admin
const (
	StaffRead     Permission = "staff:read"
	StaffManage   Permission = "staff:manage"
	FormsGenerate Permission = "forms:generate"
	FormsSign     Permission = "forms:sign"
	AdminAll      Permission = "admin:all"
)

type catalogEntry struct {
	permission Permission
	label      string
}

// catalog keeps declaration order; Catalog and PermissionsFor report in this order.
var catalog = []catalogEntry{
	{FacilityRead, "View facility"},
	{FacilityEdit, "Edit facility"},

	{ResidentList, "View resident list"},
	{ResidentRead, "View resident details"},
	{ResidentCreate, "Create residents"},
	{ResidentEdit, "Edit residents"},

	{EHRMedicationsRead, "View medications"},
	{EHRMedicationsWrite, "Document medications"},
	{EHRNotesRead, "View notes"},
	{EHRNotesWrite, "Create notes"},
	{EHRADLRead, "View ADLs"},
	{EHRADLWrite, "Document ADLs"},

	{StaffRead, "View staff"},
	{StaffManage, "Manage staff"},

	{FormsGenerate, "Generate forms"},
	{FormsSign, "Sign forms"},

	{AdminAll, "Full admin access"},
}

var (
	labels   = make(map[Permission]string, len(catalog))
	position = make(map[Permission]int, len(catalog))
)

func init() {
	for i, e := range catalog {
		labels[e.permission] = e.label
		position[e.permission] = i
	}
}

// Valid reports whether p is part of the catalog.
func (p Permission) Valid() bool {
	_, ok := labels[p]
	return ok
}

// Label returns the display label, or an empty string for an unknown permission.
func (p Permission) Label() string {
	return labels[p]
}

func (p Permission) String() string {
	return string(p)
}

// Catalog returns every permission in declaration order.
func Catalog() []Permission {
	out := make([]Permission, len(catalog))
	for i, e := range catalog {
		out[i] = e.permission
	}
	return out
}

// ParsePermission converts user or config input into a Permission.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}
