package role

import "strings"

// Role is a platform role. Priority order is Admin > Manager > Operator > Resident.
type Role string

const (
	Admin    Role = "admin"
	Manager  Role = "manager"
	Operator Role = "operator"
	Resident Role = "resident"

	// legacyOwner is accepted from old staff rows and treated as Admin.
	legacyOwner = "owner"
)

var priority = map[Role]int{
	Admin:    0,
	Manager:  1,
	Operator: 2,
	Resident: 3,
}

// ordered lists roles from highest to lowest priority.
var ordered = []Role{Admin, Manager, Operator, Resident}

// Parse normalizes a raw role string. ok is false for unknown roles.
func Parse(raw string) (Role, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == legacyOwner {
		return Admin, true
	}
	r := Role(s)
	_, ok := priority[r]
	return r, ok
}

// StaffExact accepts only the literal admin, manager and operator values.
// Aliases and other spellings are not recognized.
func StaffExact(raw string) (Role, bool) {
	r := Role(raw)
	return r, r.IsStaff()
}

// IsStaff reports whether r grants access to the admin surface.
func (r Role) IsStaff() bool {
	return r == Admin || r == Manager || r == Operator
}

// Outranks reports whether r has strictly higher priority than o.
func (r Role) Outranks(o Role) bool {
	rp, ok := priority[r]
	if !ok {
		return false
	}
	op, ok := priority[o]
	return !ok || rp < op
}

func (r Role) String() string {
	return string(r)
}

// Normalize turns raw role strings into an effective role set: unknown values
// are dropped, duplicates collapse, Resident is suppressed when any staff role
// is present, and the result is ordered by priority.
func Normalize(raw []string) []Role {
	seen := make(map[Role]bool, len(raw))
	staff := false
	for _, s := range raw {
		r, ok := Parse(s)
		if !ok {
			continue
		}
		seen[r] = true
		if r.IsStaff() {
			staff = true
		}
	}

	out := make([]Role, 0, len(seen))
	for _, r := range ordered {
		if !seen[r] {
			continue
		}
		if r == Resident && staff {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Effective normalizes staff roles with the Resident default unioned in.
func Effective(staffRoles []string) []Role {
	raw := make([]string, 0, len(staffRoles)+1)
	raw = append(raw, staffRoles...)
	raw = append(raw, string(Resident))
	return Normalize(raw)
}

// Highest returns the first (highest-priority) role of a normalized set.
func Highest(roles []Role) (Role, bool) {
	if len(roles) == 0 {
		return "", false
	}
	return roles[0], true
}

// Strings converts roles for JSON responses.
func Strings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
