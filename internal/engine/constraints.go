package engine

import "slices"

type Rejection string

const (
	RejectUnavailable Rejection = "unavailable"
	RejectForbidden   Rejection = "forbidden"
	RejectQuota       Rejection = "role quota"
	RejectTiming      Rejection = "pick timing"
	RejectPair        Rejection = "pair dependency"
	RejectRole        Rejection = "missing required role"
)

// FilterResult is the outcome of running candidates through the constraint
// steps. Rejected records the first step that dropped each hero.
type FilterResult struct {
	Allowed  []string
	Rejected map[string]Rejection
	// RoleLock holds the missing roles candidates were restricted to.
	RoleLock []Role
	// Relaxed is set when the role lock left nothing and was lifted.
	Relaxed bool
}

// Filter applies the pick constraints for side on slot, in order:
// forbidden, role quota, pick timing, pair dependency and finally the
// missing-role lock. paired marks a slot where a partner pick can be
// committed alongside.
func (s *State) Filter(candidates []string, side Side, slot int, paired bool) FilterResult {
	t := s.Team(side)
	phase := DerivePhase(slot, s.Rules)
	res := FilterResult{Rejected: map[string]Rejection{}}

	var kept []string
	for _, name := range candidates {
		if r, ok := s.reject(name, t, phase, paired); ok {
			res.Rejected[name] = r
			continue
		}
		kept = append(kept, name)
	}

	missing := t.MissingRoles(s.Rules.RequiredRoles)
	if len(missing) == 0 || len(missing) != len(t.Available) {
		res.Allowed = kept
		return res
	}

	res.RoleLock = missing
	var locked []string
	for _, name := range kept {
		if slices.Contains(missing, s.Hero(name).ResolvedRole()) {
			locked = append(locked, name)
		}
	}
	if len(locked) == 0 {
		res.Relaxed = true
		res.Allowed = kept
		return res
	}
	for _, name := range kept {
		if !slices.Contains(locked, name) {
			res.Rejected[name] = RejectRole
		}
	}
	res.Allowed = locked
	return res
}

func (s *State) reject(name string, t *Team, phase Phase, paired bool) (Rejection, bool) {
	if s.Forbidden[name] {
		return RejectForbidden, true
	}
	if !s.Available[name] {
		return RejectUnavailable, true
	}

	hero := s.Hero(name)
	role := hero.ResolvedRole()
	if limit, ok := s.Rules.RoleLimits[role]; ok && t.RoleCounts[role] >= limit {
		return RejectQuota, true
	}

	if p, ok := s.Rules.HeroPhase[name]; ok && phase.rank() < p.rank() {
		return RejectTiming, true
	}
	for _, tag := range hero.Tags() {
		if p, ok := s.Rules.RolePhase[tag]; ok && phase.rank() < p.rank() {
			return RejectTiming, true
		}
	}

	if partner, ok := s.Rules.Partners[name]; ok {
		if !paired || !s.Available[partner] || s.Forbidden[partner] || len(t.Available) < 2 {
			return RejectPair, true
		}
	}
	return "", false
}

// banFilter only applies the forbidden list; quotas and timing are pick rules.
func (s *State) banFilter(name string) bool {
	return !s.Forbidden[name] && s.Available[name]
}
