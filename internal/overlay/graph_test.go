package overlay

import (
	"strings"
	"testing"
)

// parsedFilter is a filter description decoded the way ffmpeg's filtergraph
// and option parsers read it.
type parsedFilter struct {
	name string
	opts map[string]string
	keys []string
}

// getToken mirrors av_get_token: leading whitespace is skipped, a backslash
// escapes the next byte, single quotes protect everything up to the next
// quote, and an unprotected byte from term ends the token.
func getToken(s string, term string) (token, rest string) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	var b strings.Builder
	end := 0
	for i < len(s) && !strings.ContainsRune(term, rune(s[i])) {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				b.WriteByte(s[i+1])
				i += 2
			} else {
				i++
			}
			end = b.Len()
		case '\'':
			i++
			for i < len(s) && s[i] != '\'' {
				b.WriteByte(s[i])
				i++
			}
			i++
			end = b.Len()
		default:
			b.WriteByte(c)
			i++
			if c != ' ' && c != '\t' && c != '\n' {
				end = b.Len()
			}
		}
	}
	if i > len(s) {
		i = len(s)
	}
	return b.String()[:end], s[i:]
}

func parseChain(t *testing.T, chain string) []parsedFilter {
	t.Helper()
	var filters []parsedFilter
	rest := chain
	for rest != "" {
		eq := strings.IndexAny(rest, "=,")
		if eq < 0 {
			filters = append(filters, parsedFilter{name: rest})
			break
		}
		name := rest[:eq]
		rest = rest[eq:]
		var args string
		if rest[0] == '=' {
			args, rest = getToken(rest[1:], "[],;")
		}
		filters = append(filters, parseOptions(t, name, args))
		if rest != "" {
			if rest[0] != ',' {
				t.Fatalf("unexpected separator %q in %q", rest[0], chain)
			}
			rest = rest[1:]
		}
	}
	return filters
}

func parseOptions(t *testing.T, name, args string) parsedFilter {
	t.Helper()
	f := parsedFilter{name: name, opts: map[string]string{}}
	for args != "" {
		var key, val string
		key, args = getToken(args, "=:")
		if args == "" || args[0] != '=' {
			t.Fatalf("option %q in filter %s has no value", key, name)
		}
		val, args = getToken(args[1:], ":")
		f.opts[key] = val
		f.keys = append(f.keys, key)
		if args != "" {
			args = args[1:]
		}
	}
	return f
}
