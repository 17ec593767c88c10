package overlay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LoadLines reads a display-text resource. Missing files are returned as an
// error satisfying errors.Is(err, fs.ErrNotExist) so callers can treat them
// as "feature off".
func LoadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	lines, err := ParseLines(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// ParseLines returns one display line per non-empty input line. Lines starting
// with "//" are skipped, trailing "//" comments are cut, and text is
// normalized to NFC so composed and decomposed accents render the same.
func ParseLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		raw := scanner.Text()
		if first {
			raw = strings.TrimPrefix(raw, "\ufeff")
			first = false
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if idx := strings.Index(trimmed, "//"); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[:idx])
		}
		if trimmed == "" {
			continue
		}
		lines = append(lines, norm.NFC.String(trimmed))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
