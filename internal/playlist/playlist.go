package playlist

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"adreel/internal/ads"
	"adreel/internal/overlay"
	"adreel/internal/services"
)

// Kind identifies what a playlist entry plays.
type Kind string

const (
	KindWelcome Kind = "welcome"
	KindChunk   Kind = "chunk"
	KindAd      Kind = "ad"
)

// Chunk is one slice of the source movie.
type Chunk struct {
	Index    int
	Path     string
	Duration float64
}

// Entry is one part of the program.
type Entry struct {
	Kind Kind
	// Index is the chunk ordinal or ad slot; zero for the welcome clip.
	Index int
	// Path is the file handed to the concat demuxer.
	Path string
	// Source is the file Path was produced from.
	Source   string
	Duration float64
	Overlay  overlay.Chain
}

// Playlist is the ordered set of parts for one program.
type Playlist struct {
	Entries []Entry
	// ListPath is where the concat list was written, empty until Listed.
	ListPath string
}

// CountdownFileName is the overlaid copy of chunk i.
func CountdownFileName(i int) string {
	return fmt.Sprintf("chunk_with_countdown_%03d.mkv", i)
}

// WelcomeFileName is the rendered welcome clip.
const WelcomeFileName = "welcome.mkv"

// ListFileName is the concat demuxer list inside a workspace.
const ListFileName = "file_list.txt"

// ChunkEntry builds the playlist entry for c with its countdown overlay.
func ChunkEntry(c Chunk, path string, style overlay.CountdownStyle) Entry {
	return Entry{
		Kind:     KindChunk,
		Index:    c.Index,
		Path:     path,
		Source:   c.Path,
		Duration: c.Duration,
		Overlay:  overlay.Chain{overlay.Countdown(c.Duration, style)},
	}
}

// AdEntry builds the playlist entry for a prepared ad slot.
func AdEntry(a ads.Asset, duration float64) Entry {
	return Entry{Kind: KindAd, Index: a.Slot, Path: a.Path, Source: a.Source, Duration: duration}
}

// Interleave orders the parts: welcome first when present, then each chunk
// followed by the ad with the same index. No ad follows the last chunk, and
// extra ads are ignored.
func Interleave(welcome *Entry, chunks, adEntries []Entry) []Entry {
	out := make([]Entry, 0, len(chunks)+len(adEntries)+1)
	if welcome != nil {
		out = append(out, *welcome)
	}
	for i, chunk := range chunks {
		out = append(out, chunk)
		if i < len(adEntries) && i < len(chunks)-1 {
			out = append(out, adEntries[i])
		}
	}
	return out
}

// Count returns how many entries of kind k the playlist holds.
func (p *Playlist) Count(k Kind) int {
	n := 0
	for _, e := range p.Entries {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Duration sums the entry durations.
func (p *Playlist) Duration() float64 {
	total := 0.0
	for _, e := range p.Entries {
		total += e.Duration
	}
	return total
}

// Paths returns the entry paths in order.
func (p *Playlist) Paths() []string {
	paths := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		paths[i] = e.Path
	}
	return paths
}

// Describe renders each entry as "<file> <overlay>" so two builds can be
// compared without looking at encoded bytes.
func (p *Playlist) Describe() []string {
	lines := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		line := filepath.Base(e.Path)
		if !e.Overlay.Empty() {
			line += " " + e.Overlay.String()
		}
		lines[i] = line
	}
	return lines
}

// ConcatList renders paths in the concat demuxer format, one
// file '<absolute path>' line each, with forward slashes.
func ConcatList(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "playlist", "concat list", p, err)
		}
		abs = filepath.ToSlash(abs)
		buf.WriteString("file '")
		buf.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		buf.WriteString("'\n")
	}
	return buf.Bytes(), nil
}

// WriteConcatList atomically writes the concat list for p to path and
// records it in ListPath.
func (p *Playlist) WriteConcatList(path string) error {
	if len(p.Entries) == 0 {
		return services.Wrap(services.ErrValidation, "playlist", "concat list", "playlist is empty", nil)
	}
	data, err := ConcatList(p.Paths())
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrFilesystem, "playlist", "concat list", path, err)
	}
	p.ListPath = path
	return nil
}

// PlanChunks predicts the chunk durations the segmenter produces for a movie
// of the given length.
func PlanChunks(total, segment float64) []float64 {
	if total <= 0 || segment <= 0 {
		return nil
	}
	full := int(math.Floor(total / segment))
	rest := total - float64(full)*segment
	out := make([]float64, 0, full+1)
	for i := 0; i < full; i++ {
		out = append(out, segment)
	}
	// Remainders below a millisecond are rounding noise, not a chunk.
	if rest >= 0.001 {
		out = append(out, rest)
	}
	return out
}

// PlanRequest describes a dry run.
type PlanRequest struct {
	MovieDuration  float64
	SegmentSeconds float64
	WelcomeLines   []string
	WelcomeStyle   overlay.WelcomeStyle
	WelcomeSeconds float64
	AdPool         []string
	// AdDurations maps pool files to their lengths; missing entries count as zero.
	AdDurations map[string]float64
	Countdown   overlay.CountdownStyle
	WorkDir     string
}

// Plan builds the playlist a run would produce without touching media.
func Plan(req PlanRequest) *Playlist {
	var welcome *Entry
	if chain, ok := overlay.Welcome(req.WelcomeLines, req.WelcomeStyle); ok && req.WelcomeSeconds > 0 {
		welcome = &Entry{
			Kind:     KindWelcome,
			Path:     filepath.Join(req.WorkDir, WelcomeFileName),
			Duration: req.WelcomeSeconds,
			Overlay:  chain,
		}
	}

	durations := PlanChunks(req.MovieDuration, req.SegmentSeconds)
	chunks := make([]Entry, len(durations))
	for i, d := range durations {
		c := Chunk{Index: i, Path: filepath.Join(req.WorkDir, fmt.Sprintf("chunk_%03d.mkv", i)), Duration: d}
		chunks[i] = ChunkEntry(c, filepath.Join(req.WorkDir, CountdownFileName(i)), req.Countdown)
	}

	assets := ads.Select(len(chunks)-1, req.AdPool)
	adEntries := make([]Entry, len(assets))
	for i, a := range assets {
		a.Path = filepath.Join(req.WorkDir, ads.SlotFileName(a.Slot))
		adEntries[i] = AdEntry(a, req.AdDurations[a.Source])
	}

	return &Playlist{Entries: Interleave(welcome, chunks, adEntries)}
}
