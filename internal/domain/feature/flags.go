package feature

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFlag         = errors.New("unknown feature flag")
	ErrConflictingOverride = errors.New("feature flag both enabled and disabled")
)

// Flag names a switchable portal feature.
type Flag string

// Phase 1: marketplace only, no PHI storage.
const (
	FacilityDirectory  Flag = "FACILITY_DIRECTORY"
	FacilityManagement Flag = "FACILITY_MANAGEMENT"
	Inquiries          Flag = "INQUIRIES"
	Reviews            Flag = "REVIEWS"
	StaffList          Flag = "STAFF_LIST"
	Transport          Flag = "TRANSPORT"
	DSHSForms          Flag = "DSHS_FORMS"
	ActivityLog        Flag = "ACTIVITY_LOG"
)

// Phase 2: requires HIPAA compliance.
const (
	Residents        Flag = "RESIDENTS"
	Medications      Flag = "MEDICATIONS"
	ADLDocumentation Flag = "ADL_DOCUMENTATION"
	Incidents        Flag = "INCIDENTS"
	CarePlans        Flag = "CARE_PLANS"
	StaffCredentials Flag = "STAFF_CREDENTIALS"
	Vitals           Flag = "VITALS"
	DailyNotes       Flag = "DAILY_NOTES"
	EHRDashboard     Flag = "EHR_DASHBOARD"
)

// Phase2Target is the planned release window for the EHR module.
const Phase2Target = "Q2 2025"

type flagDefault struct {
	flag    Flag
	enabled bool
}

var defaults = []flagDefault{
	{FacilityDirectory, true},
	{FacilityManagement, true},
	{Inquiries, true},
	{Reviews, true},
	{StaffList, true},
	{Transport, true},
	{DSHSForms, true},
	{ActivityLog, true},

	{Residents, false},
	{Medications, false},
	{ADLDocumentation, false},
	{Incidents, false},
	{CarePlans, false},
	{StaffCredentials, false},
	{Vitals, false},
	{DailyNotes, false},
	{EHRDashboard, false},
}

// Valid reports whether f is a declared flag.
func (f Flag) Valid() bool {
	for _, d := range defaults {
		if d.flag == f {
			return true
		}
	}
	return false
}

// ParseFlag converts configuration input into a Flag.
func ParseFlag(s string) (Flag, error) {
	f := Flag(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFlag, s)
	}
	return f, nil
}

// Set is an immutable snapshot of flag states.
type Set struct {
	state map[Flag]bool
}

// Defaults returns the compiled-in flag states.
func Defaults() *Set {
	s := &Set{state: make(map[Flag]bool, len(defaults))}
	for _, d := range defaults {
		s.state[d.flag] = d.enabled
	}
	return s
}

// NewSet applies overrides on top of the defaults. Unknown names and names
// listed in both slices are rejected.
func NewSet(enable, disable []string) (*Set, error) {
	s := Defaults()

	enabled := make(map[Flag]bool, len(enable))
	for _, name := range enable {
		f, err := ParseFlag(name)
		if err != nil {
			return nil, err
		}
		enabled[f] = true
		s.state[f] = true
	}

	for _, name := range disable {
		f, err := ParseFlag(name)
		if err != nil {
			return nil, err
		}
		if enabled[f] {
			return nil, fmt.Errorf("%w: %q", ErrConflictingOverride, name)
		}
		s.state[f] = false
	}

	return s, nil
}

// IsEnabled reports whether f is switched on. Unknown flags are off.
func (s *Set) IsEnabled(f Flag) bool {
	return s.state[f]
}

// ComingSoon lists the disabled flags in declaration order.
func (s *Set) ComingSoon() []Flag {
	out := make([]Flag, 0)
	for _, d := range defaults {
		if !s.state[d.flag] {
			out = append(out, d.flag)
		}
	}
	return out
}

// All returns every flag in declaration order.
func (s *Set) All() []Flag {
	out := make([]Flag, len(defaults))
	for i, d := range defaults {
		out[i] = d.flag
	}
	return out
}
