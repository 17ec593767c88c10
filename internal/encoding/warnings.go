package encoding

import "strings"

// Warning is a known quality signature found in the encode log.
type Warning struct {
	Kind    string
	Count   int
	Example string
}

type signature struct {
	kind  string
	match string
}

// ffmpeg has printed both spellings of the DTS message over the years.
var signatures = []signature{
	{kind: "non_monotonic_dts", match: "Non-monotonic DTS"},
	{kind: "non_monotonic_dts", match: "Non-monotonous DTS"},
	{kind: "decode_error", match: "error while decoding"},
}

// ScanWarnings reports each signature kind found in lines, in signature order.
func ScanWarnings(lines []string) []Warning {
	var found []Warning
	index := map[string]int{}
	for _, line := range lines {
		for _, sig := range signatures {
			if !strings.Contains(line, sig.match) {
				continue
			}
			if i, ok := index[sig.kind]; ok {
				found[i].Count++
				continue
			}
			index[sig.kind] = len(found)
			found = append(found, Warning{Kind: sig.kind, Count: 1, Example: line})
		}
	}
	return found
}
