package match

import "strings"

// Replacement returns the text that replaces m. Literal queries substitute
// repl verbatim. Regex queries expand group references in repl against the
// match: $1, ${name} and $& for the whole match.
func (m Match) Replacement(repl string, regex bool) string {
	if !regex || m.Pattern == nil {
		return repl
	}
	template := strings.ReplaceAll(repl, "$&", "${0}")
	if m.groups == nil {
		return m.Pattern.ReplaceAllString(m.Text, template)
	}
	return string(m.Pattern.ExpandString(nil, template, m.Text, m.groups))
}
