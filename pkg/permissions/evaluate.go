package permissions

import "strings"

const (
	placeholderOpen  = "{{"
	placeholderClose = "}}"
)

// Decision is the outcome of one access-control evaluation. Matched lists
// the resolved patterns the grant set satisfied, in requiredPatterns order,
// for audit logging; it plays no part in the boolean outcome beyond its
// length.
type Decision struct {
	Allowed bool
	Matched []string
}

// Resolve substitutes every "{{name}}" occurrence in pattern with
// params[name]. Substitution is literal string replacement, not regex.
// Placeholders without a matching param are left intact, which can never
// match a real grant since grants never contain brace characters; the
// pattern then simply fails to match.
func Resolve(pattern string, params map[string]string) string {
	if !strings.Contains(pattern, placeholderOpen) {
		return pattern
	}
	for name, value := range params {
		pattern = strings.ReplaceAll(pattern, placeholderOpen+name+placeholderClose, value)
	}
	return pattern
}

// Evaluate decides whether a grant set satisfies a route's required
// permission patterns.
//
// An empty pattern list means the route declares no restriction and always
// allows. The global wildcard and superadmin grants short-circuit to allow
// before any pattern is resolved. Otherwise each pattern is resolved against
// params and tested against the parsed grants: with strict set, every
// pattern must match; without it, one match suffices.
//
// Evaluate is a pure function. It performs no deduplication of patterns
// (duplicates inflate the required count under strict mode by design of the
// route declaration) and never returns an error: deny is a normal outcome.
func Evaluate(grants []string, patterns []string, params map[string]string, strict bool) Decision {
	if len(patterns) == 0 {
		return Decision{Allowed: true}
	}

	tree := Parse(grants)
	if tree.AllowAll() || tree.Has(SuperAdmin) {
		return Decision{Allowed: true}
	}

	matched := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if resolved := Resolve(pattern, params); tree.Has(resolved) {
			matched = append(matched, resolved)
		}
	}

	allowed := len(matched) > 0
	if strict {
		allowed = len(matched) == len(patterns)
	}

	return Decision{Allowed: allowed, Matched: matched}
}
