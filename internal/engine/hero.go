package engine

import (
	"slices"
	"strings"
)

type Role string

const (
	RoleTank           Role = "Tank"
	RoleHealer         Role = "Healer"
	RoleOfflaner       Role = "Offlaner"
	RoleBruiser        Role = "Bruiser"
	RoleRangedAssassin Role = "Ranged Assassin"
	RoleMeleeAssassin  Role = "Melee Assassin"
	RoleSupport        Role = "Support"
	RoleUnknown        Role = "Unknown"
)

var knownRoles = []Role{
	RoleTank, RoleHealer, RoleOfflaner, RoleBruiser,
	RoleRangedAssassin, RoleMeleeAssassin, RoleSupport,
}

// ParseRole maps a provider or config role label onto a Role, ignoring case
// and surrounding whitespace. Unrecognized labels are kept verbatim.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	for _, r := range knownRoles {
		if strings.EqualFold(string(r), s) {
			return r
		}
	}
	return Role(s)
}

// Canonical folds Bruiser into the Offlaner bucket.
func (r Role) Canonical() Role {
	if r == RoleBruiser {
		return RoleOfflaner
	}
	return r
}

type Hero struct {
	Name  string
	Roles []Role
}

// ResolvedRole is the single role bucket a pick of this hero is counted in.
func (h Hero) ResolvedRole() Role {
	if len(h.Roles) == 0 {
		return RoleUnknown
	}
	if slices.Contains(h.Roles, RoleBruiser) {
		return RoleOfflaner
	}
	return h.Roles[0].Canonical()
}

// Tags returns the canonical role tags, deduplicated, in declaration order.
func (h Hero) Tags() []Role {
	out := make([]Role, 0, len(h.Roles))
	for _, r := range h.Roles {
		c := r.Canonical()
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func (h Hero) HasTag(r Role) bool {
	return slices.Contains(h.Tags(), r.Canonical())
}

// MergeRoles lays configured overrides over provider roles. Override tags
// come first so they decide the resolved role.
func MergeRoles(provider, override []Role) []Role {
	out := make([]Role, 0, len(provider)+len(override))
	for _, r := range override {
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	for _, r := range provider {
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
