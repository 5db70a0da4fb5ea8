// Package slug derives the URL-safe identifiers used for communities and
// missions from their display names. Slugs double as permission segments
// ("community.<slug>.leader"), so they never contain dots or braces.
package slug
