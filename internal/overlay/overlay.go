package overlay

import (
	"math"
	"strconv"
	"strings"
)

// Filter is one element of a video filter chain.
type Filter interface {
	filter() string
}

// Chain is an ordered list of filters applied with -vf.
type Chain []Filter

// String serializes the chain in ffmpeg filtergraph syntax.
func (c Chain) String() string {
	parts := make([]string, 0, len(c))
	for _, f := range c {
		if f == nil {
			continue
		}
		parts = append(parts, f.filter())
	}
	return strings.Join(parts, ",")
}

// Empty reports whether the chain has no filters.
func (c Chain) Empty() bool {
	for _, f := range c {
		if f != nil {
			return false
		}
	}
	return true
}

// Scale resizes frames to a fixed size.
type Scale struct {
	Width  int
	Height int
}

func (s Scale) filter() string {
	return "scale=" + strconv.Itoa(s.Width) + ":" + strconv.Itoa(s.Height)
}

// Box draws a filled rectangle.
type Box struct {
	X, Y          string
	Width, Height int
	Color         string
}

func (b Box) filter() string {
	opts := []option{
		{"x", b.X},
		{"y", b.Y},
		{"w", strconv.Itoa(b.Width)},
		{"h", strconv.Itoa(b.Height)},
		{"color", b.Color},
		{"t", "fill"},
	}
	return "drawbox=" + joinOptions(opts)
}

// Text draws a line of text. Content is the raw display string; it is escaped
// during serialization.
type Text struct {
	Content   string
	FontFile  string
	FontSize  int
	FontColor string
	X, Y      string
	// Expand enables drawtext's %{...} expansion. Plain lines leave it off so a
	// literal percent sign in operator text is drawn as-is.
	Expand      bool
	ShadowX     int
	ShadowY     int
	ShadowColor string
	// EnableFrom, when set, limits drawing to t >= *EnableFrom seconds.
	EnableFrom *float64
}

// VisibleAt reports whether the text is drawn at presentation time t.
func (t Text) VisibleAt(ts float64) bool {
	if t.EnableFrom == nil {
		return true
	}
	return ts >= *t.EnableFrom
}

// Enable returns the serialized enable predicate, or "" when always visible.
func (t Text) Enable() string {
	if t.EnableFrom == nil {
		return ""
	}
	return "gte(t," + FormatSeconds(*t.EnableFrom) + ")"
}

func (t Text) filter() string {
	opts := make([]option, 0, 12)
	if t.FontFile != "" {
		opts = append(opts, option{"fontfile", t.FontFile})
	}
	opts = append(opts, option{"text", t.Content})
	if !t.Expand {
		opts = append(opts, option{"expansion", "none"})
	}
	opts = append(opts,
		option{"fontcolor", t.FontColor},
		option{"fontsize", strconv.Itoa(t.FontSize)},
		option{"x", t.X},
		option{"y", t.Y},
	)
	if t.ShadowColor != "" {
		opts = append(opts,
			option{"shadowx", strconv.Itoa(t.ShadowX)},
			option{"shadowy", strconv.Itoa(t.ShadowY)},
			option{"shadowcolor", t.ShadowColor},
		)
	}
	if enable := t.Enable(); enable != "" {
		opts = append(opts, option{"enable", enable})
	}
	return "drawtext=" + joinOptions(opts)
}

type option struct {
	key, value string
}

func joinOptions(opts []option) string {
	var b strings.Builder
	for i, opt := range opts {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(opt.key)
		b.WriteByte('=')
		b.WriteString(value(opt.value))
	}
	return b.String()
}

// FormatSeconds renders a time offset rounded to the millisecond without
// trailing zeros, e.g. 95, 57.015.
func FormatSeconds(s float64) string {
	return formatNumber(s)
}

// formatNumber renders v rounded to three decimals without trailing zeros.
func formatNumber(v float64) string {
	rounded := math.Round(v*1000) / 1000
	if rounded == 0 {
		rounded = 0 // normalizes -0
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
