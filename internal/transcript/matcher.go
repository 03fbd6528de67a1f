package transcript

import "strings"

var (
	stripApostrophes = strings.NewReplacer("'", "", "’", "", "‘", "", "ʼ", "")
	unifyApostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")
)

// Normalize trims, lowercases and collapses interior whitespace runs.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// IsMatch reports whether the learner's input is accepted for a canonical
// answer. Besides the normalized comparison, the only variations allowed are
// a different apostrophe glyph or leaving apostrophes out ("dont" for
// "don't"). Anything looser would accept wrong spellings.
func IsMatch(input, canonical string) bool {
	in := Normalize(input)
	want := Normalize(canonical)
	if in == want {
		return true
	}
	if unifyApostrophes.Replace(in) == unifyApostrophes.Replace(want) {
		return true
	}
	return stripApostrophes.Replace(want) == in
}
