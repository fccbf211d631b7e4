package trace

import (
	"sort"
	"strings"
)

// Delimiter separates tokens in the textual encoding of a trace.
// Each encoded trace starts with a leading delimiter so every token
// occurrence (the first one including) is delimiter-anchored.
const Delimiter = ","

// Encode produces the textual form of a token sequence,
// e.g. ["a", "b"] => ",a,b". An empty sequence encodes
// to an empty string.
func Encode(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return Delimiter + strings.Join(tokens, Delimiter)
}

// ParseEncoded is the inverse of Encode.
func ParseEncoded(s string) []string {
	s = strings.TrimPrefix(s, Delimiter)
	if s == "" {
		return nil
	}
	return strings.Split(s, Delimiter)
}

func distinctSorted(seqs [][]string) []string {
	seen := make(map[string]bool)
	for _, seq := range seqs {
		for _, tok := range seq {
			seen[tok] = true
		}
	}
	ans := make([]string, 0, len(seen))
	for tok := range seen {
		ans = append(ans, tok)
	}
	sort.Strings(ans)
	return ans
}
