package chat

import "strings"

var quickPrompts = []string{
	"What is AI?",
	"Explain Quantum Computing",
	"How does Machine Learning work?",
}

// Suggestions returns the quick prompts containing query, case-insensitively.
// A blank query yields none.
func Suggestions(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]string, 0, len(quickPrompts))
	if query == "" {
		return matches
	}
	for _, p := range quickPrompts {
		if strings.Contains(strings.ToLower(p), query) {
			matches = append(matches, p)
		}
	}
	return matches
}
