package permissions

const (
	// Wildcard is the grant that satisfies every permission check.
	Wildcard = "*"

	// SuperAdmin is the fixed grant that bypasses all pattern matching.
	// Checked after the global wildcard, before ordinary matching.
	SuperAdmin = "admin.superadmin"

	// Separator delimits permission segments, e.g. "mission.all-of-altis.editor".
	Separator = "."
)

// Kind classifies a granted permission string. Keeping the three-way split
// explicit makes the bypass precedence (wildcard, then superadmin, then
// ordinary matching) testable in isolation.
type Kind int

const (
	// KindExact is an ordinary dotted permission matched segment by segment.
	KindExact Kind = iota
	// KindWildcard is the global "*" grant.
	KindWildcard
	// KindSuperAdmin is the "admin.superadmin" grant.
	KindSuperAdmin
)

// Classify returns the kind of a single granted permission string.
func Classify(grant string) Kind {
	switch grant {
	case Wildcard:
		return KindWildcard
	case SuperAdmin:
		return KindSuperAdmin
	default:
		return KindExact
	}
}
