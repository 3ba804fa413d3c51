package traversal

import "strings"

// Stem returns name without its trailing extension. A leading dot does not
// start an extension, so ".bashrc" is its own stem.
func Stem(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name
	}
	return name[:idx]
}

// MatchesStem reports whether the stem of name contains term.
func MatchesStem(name, term string) bool {
	return strings.Contains(Stem(name), term)
}
