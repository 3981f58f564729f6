package filter

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/hugr-lab/memquery/record"
)

// compileLike compiles a like pattern into a matcher. In a pattern, % matches
// any run of characters (including none) and every other character matches
// itself. The whole value must match. A non-string pattern never matches.
func compileLike(pattern record.Value, fold bool) func(s string) bool {
	if pattern.Kind() != record.String {
		return func(string) bool { return false }
	}
	p := pattern.AsString()
	if fold {
		p = strings.ToLower(p)
	}

	// Literal characters must all be present; glob's prefix/suffix matcher
	// lets them overlap.
	minLen := len(p) - strings.Count(p, "%")

	g, err := glob.Compile(likeToGlob(p))
	if err != nil {
		// QuoteMeta leaves nothing for the glob compiler to reject; fall back
		// to exact comparison rather than matching everything.
		return func(s string) bool {
			if fold {
				s = strings.ToLower(s)
			}
			return s == p
		}
	}
	return func(s string) bool {
		if fold {
			s = strings.ToLower(s)
		}
		return len(s) >= minLen && g.Match(s)
	}
}

// likeToGlob escapes glob metacharacters and turns % into *.
func likeToGlob(pattern string) string {
	parts := strings.Split(pattern, "%")
	for i, part := range parts {
		parts[i] = glob.QuoteMeta(part)
	}
	return strings.Join(parts, "*")
}
