package server

import "strings"

// parseSearchQuery splits the search box text on single spaces into a title
// fragment and required tags. Words starting with '#' are tags (a bare '#' is
// ignored); the remaining words are re-joined with spaces and trimmed into the
// title. "hello #go world #db" yields title "hello world" and tags [go db].
func parseSearchQuery(text string) (title string, tags []string) {
	var words []string
	for _, word := range strings.Split(text, " ") {
		if tag, ok := strings.CutPrefix(word, "#"); ok {
			if tag != "" {
				tags = append(tags, tag)
			}
			continue
		}
		words = append(words, word)
	}
	return strings.TrimSpace(strings.Join(words, " ")), tags
}
