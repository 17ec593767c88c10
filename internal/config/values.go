package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Values holds the coerced entries of a KEY = VALUE program file. Each value
// is an int64, float64, or string.
type Values map[string]any

// LoadValues parses the program configuration file at path. A missing or
// unreadable file is an error; malformed lines are skipped.
func LoadValues(path string) (Values, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program config: %w", err)
	}
	defer file.Close()
	return ParseValues(file)
}

// ParseValues reads KEY = VALUE lines from r. Anything after "//" is a
// comment, lines without "=" are ignored, and the first "=" splits key from
// value. A later duplicate key replaces an earlier one.
func ParseValues(r io.Reader) (Values, error) {
	values := Values{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		key, raw, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = coerce(strings.TrimSpace(raw))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read program config: %w", err)
	}
	return values, nil
}

func coerce(raw string) any {
	if isDigits(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Float returns the numeric value for key, or def when the key is missing or
// not a number.
func (v Values) Float(key string, def float64) float64 {
	switch n := v[key].(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return def
	}
}

// Int returns the value for key as an integer. Floats are truncated toward
// zero.
func (v Values) Int(key string, def int64) int64 {
	switch n := v[key].(type) {
	case int64:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return def
		}
		return int64(n)
	default:
		return def
	}
}

// String returns the raw text for key. Numbers are formatted back to text.
func (v Values) String(key, def string) string {
	switch s := v[key].(type) {
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return def
	}
}

// Seconds interprets key as a number of seconds multiplied by scale, so a
// minutes value is read with scale 60.
func (v Values) Seconds(key string, def, scale float64) time.Duration {
	n := v.Float(key, def)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = def
	}
	return time.Duration(n * scale * float64(time.Second))
}
