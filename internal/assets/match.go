package assets

import (
	"strings"
)

// normalizeName canonicalizes a slug or file base name for matching:
// a leading run of digits is dropped (track numbering), dashes and
// underscores become spaces, and the result is lowercased and trimmed.
func normalizeName(name string) string {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	name = name[i:]
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ToLower(name)
	return strings.TrimSpace(name)
}

// matchName picks the best candidate for a slug from a listing of base
// names. All candidates are tried for normalized equality before any is
// tried for containment, so a later exact-normalized hit beats an earlier
// substring hit. The listing is expected to be sorted; ties go to the
// first entry.
func matchName(listing []string, slug string) (string, bool) {
	want := normalizeName(slug)
	if want == "" {
		return "", false
	}
	for _, candidate := range listing {
		if normalizeName(candidate) == want {
			return candidate, true
		}
	}
	for _, candidate := range listing {
		if strings.Contains(normalizeName(candidate), want) {
			return candidate, true
		}
	}
	return "", false
}

// stemKeyword reports whether a loose file name advertises stem content.
func stemKeyword(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "stem") || strings.Contains(lower, "trackout")
}

func baseName(filename string) string {
	if i := strings.LastIndex(filename, "."); i > 0 {
		return filename[:i]
	}
	return filename
}
