package playlist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"adreel/internal/media/ffprobe"
	"adreel/internal/overlay"
	"adreel/internal/services"
)

// fakeTranscoder writes placeholder files and records every call.
type fakeTranscoder struct {
	mu          sync.Mutex
	chunkCount  int
	failSegment bool
	failChunk   int
	calls       []string
	chains      map[string]overlay.Chain
}

func newFakeTranscoder(chunks int) *fakeTranscoder {
	return &fakeTranscoder{chunkCount: chunks, failChunk: -1, chains: map[string]overlay.Chain{}}
}

func (f *fakeTranscoder) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeTranscoder) Normalize(_ context.Context, in, out string, chain overlay.Chain) error {
	f.record("normalize " + filepath.Base(in) + " -> " + filepath.Base(out))
	if f.failChunk >= 0 && filepath.Base(out) == CountdownFileName(f.failChunk) {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "normalize", "exit status 1", nil)
	}
	f.mu.Lock()
	f.chains[filepath.Base(out)] = chain
	f.mu.Unlock()
	return os.WriteFile(out, []byte("media"), 0o644)
}

func (f *fakeTranscoder) Segment(_ context.Context, in, workDir string, _ float64) ([]string, error) {
	f.record("segment " + filepath.Base(in))
	if f.failSegment {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "segment", "exit status 1", nil)
	}
	paths := make([]string, f.chunkCount)
	for i := range paths {
		paths[i] = filepath.Join(workDir, fmt.Sprintf("chunk_%03d.mkv", i))
		if err := os.WriteFile(paths[i], []byte("chunk"), 0o644); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func (f *fakeTranscoder) RenderWelcome(_ context.Context, out string, _ overlay.Chain, _ float64) error {
	f.record("welcome " + filepath.Base(out))
	return os.WriteFile(out, []byte("welcome"), 0o644)
}

// fakeProber returns durations by file name.
type fakeProber map[string]float64

func (p fakeProber) Duration(_ context.Context, path string) (float64, error) {
	d, ok := p[filepath.Base(path)]
	if !ok {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", "unknown file "+path, nil)
	}
	return d, nil
}

// fakeInspector returns one canned layout for every movie.
type fakeInspector struct {
	result ffprobe.Result
	calls  int
}

func (f *fakeInspector) Inspect(_ context.Context, _ string) (ffprobe.Result, error) {
	f.calls++
	return f.result, nil
}
