package domain

import (
	"fmt"
	"strings"
)

// Permission is a single named scope a client application may request and a
// user may grant.
type Permission uint16

const (
	PermReadPrefs Permission = 1 << iota
	PermWritePrefs
	PermWriteDiary
	PermWriteAPI
	PermReadGPX
	PermWriteGPX
	PermWriteNotes
)

// AllPermissions lists every known permission in their canonical order. The
// order matches the storage column order.
var AllPermissions = []Permission{
	PermReadPrefs,
	PermWritePrefs,
	PermWriteDiary,
	PermWriteAPI,
	PermReadGPX,
	PermWriteGPX,
	PermWriteNotes,
}

var permissionNames = map[Permission]string{
	PermReadPrefs:  "allow_read_prefs",
	PermWritePrefs: "allow_write_prefs",
	PermWriteDiary: "allow_write_diary",
	PermWriteAPI:   "allow_write_api",
	PermReadGPX:    "allow_read_gpx",
	PermWriteGPX:   "allow_write_gpx",
	PermWriteNotes: "allow_write_notes",
}

// String returns the wire/column name of the permission.
func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("permission(%d)", uint16(p))
}

// ParsePermission maps a wire name back to its Permission.
func ParsePermission(name string) (Permission, bool) {
	name = strings.TrimSpace(name)
	for p, n := range permissionNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

// PermissionSet is a bitmask of granted permissions.
type PermissionSet uint16

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s = s.With(p)
	}
	return s
}

// ParsePermissions builds a set from wire names, rejecting unknown names.
func ParsePermissions(names []string) (PermissionSet, error) {
	var s PermissionSet
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, ok := ParsePermission(name)
		if !ok {
			return 0, fmt.Errorf("unknown permission %q", name)
		}
		s = s.With(p)
	}
	return s, nil
}

func (s PermissionSet) Has(p Permission) bool { return uint16(s)&uint16(p) != 0 }

func (s PermissionSet) With(p Permission) PermissionSet {
	return PermissionSet(uint16(s) | uint16(p))
}

func (s PermissionSet) Intersect(o PermissionSet) PermissionSet {
	return PermissionSet(uint16(s) & uint16(o))
}

func (s PermissionSet) IsEmpty() bool { return s == 0 }

// List returns the permissions in the set in canonical order.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(AllPermissions))
	for _, p := range AllPermissions {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the wire names of the permissions in the set.
func (s PermissionSet) Names() []string {
	perms := s.List()
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = p.String()
	}
	return out
}

// Flags expands the set into one boolean per permission, in AllPermissions
// order. Drivers use it to bind the per-permission columns.
func (s PermissionSet) Flags() []bool {
	out := make([]bool, len(AllPermissions))
	for i, p := range AllPermissions {
		out[i] = s.Has(p)
	}
	return out
}

// PermissionSetFromFlags is the inverse of Flags.
func PermissionSetFromFlags(flags []bool) PermissionSet {
	var s PermissionSet
	for i, on := range flags {
		if on && i < len(AllPermissions) {
			s = s.With(AllPermissions[i])
		}
	}
	return s
}
