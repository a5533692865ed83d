package proxy

import "strings"

// JoinTarget builds the outbound URL for a proxied request.
//
// Exactly one trailing slash is stripped from base, the non-empty residual
// path segments are joined with single slashes, and the raw query string is
// appended verbatim. Rewriting is idempotent under trailing-slash variation:
// "http://x/y" and "http://x/y/" produce identical outbound URLs.
func JoinTarget(base string, segments []string, rawQuery string) (string, error) {
	if base == "" {
		return "", ErrNoTargetConfigured
	}

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		b.WriteString("/")
		b.WriteString(seg)
	}

	if rawQuery != "" {
		b.WriteString("?")
		b.WriteString(rawQuery)
	}

	return b.String(), nil
}

// JoinTargetWithSegment is the single-tenant variant of JoinTarget: a fixed
// literal path segment is inserted between the base and the residual path.
// The downstream service routes on this segment. Trailing-slash stripping
// applies to the insertion point the same way it applies to the base.
func JoinTargetWithSegment(base, fixed string, segments []string, rawQuery string) (string, error) {
	joined := make([]string, 0, len(segments)+1)
	joined = append(joined, strings.TrimSuffix(fixed, "/"))
	joined = append(joined, segments...)

	return JoinTarget(base, joined, rawQuery)
}

// SplitPath splits a residual request path into its segments, dropping
// empty ones produced by leading, trailing, or doubled slashes.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}

	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
