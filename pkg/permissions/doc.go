// Package permissions implements the string-based access-control model used
// across the API: a caller's granted permission strings are matched against
// per-route permission patterns.
//
// A permission is a dot-separated sequence of segments, e.g.
// "community.spezialeinheit-luchs.leader" or "mission.all-of-altis.editor".
// Two literals are special:
//
//   - "*" grants everything (global wildcard)
//   - "admin.superadmin" satisfies any requirement (superadmin bypass)
//
// Route patterns may contain placeholders of the form "{{paramName}}" that
// are substituted with route parameter values before matching, so a single
// declaration like "community.{{communitySlug}}.leader" guards every
// community.
//
// # Usage
//
//	grants := []string{"community.sel.founder"}
//	dec := permissions.Evaluate(grants,
//	    []string{"community.{{communitySlug}}.founder", "community.{{communitySlug}}.leader"},
//	    map[string]string{"communitySlug": "sel"},
//	    false,
//	)
//	// dec.Allowed == true, dec.Matched == ["community.sel.founder"]
//
// Evaluation is pure: no I/O, no shared state, no error returns. "Deny" is a
// normal result, never an error. Malformed grants or unresolved placeholders
// silently fail to match instead of failing loudly.
package permissions
