package overlay

import "strings"

// optionEscaper escapes characters that are special to ffmpeg's option
// parser (key=value pairs separated by ':').
var optionEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
)

// EscapeText escapes a drawtext payload for the option level of a filter
// description. The result still has to be quoted for the graph level; Chain
// does both.
func EscapeText(s string) string {
	return optionEscaper.Replace(s)
}

// quoteGraph wraps s in single quotes for the filtergraph parser. A quote
// cannot appear inside a quoted run, so each one closes the run, is emitted
// escaped, and reopens it.
func quoteGraph(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// value serializes one option value for use inside a filter chain.
func value(s string) string {
	return quoteGraph(EscapeText(s))
}
