// Package ads picks advertisement clips for the gaps between movie chunks.
//
// The pool is the sorted list of clips in a flat directory. Slot i always gets
// pool[i mod len(pool)], so a small pool repeats in order and a run over the
// same inputs always picks the same clips.
package ads

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"adreel/internal/logging"
	"adreel/internal/overlay"
	"adreel/internal/services"
)

// Asset is one ad slot.
type Asset struct {
	Source string
	Slot   int
	// Path is the normalized copy inside the workspace; empty until prepared.
	Path string
}

// ListPool returns the files in dir ending in ext, sorted by name. A missing
// directory yields an empty pool.
func ListPool(dir, ext string) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrFilesystem, "ads", "list pool", dir, err)
	}
	ext = strings.ToLower(ext)
	var pool []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ext {
			continue
		}
		pool = append(pool, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(pool)
	return pool, nil
}

// Select assigns n slots by cycling through pool. It returns nil when n is not
// positive or the pool is empty.
func Select(n int, pool []string) []Asset {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	assets := make([]Asset, n)
	for i := range assets {
		assets[i] = Asset{Source: pool[i%len(pool)], Slot: i}
	}
	return assets
}

// SlotFileName is the normalized file name for slot i.
func SlotFileName(slot int) string {
	return fmt.Sprintf("ad_%03d.mkv", slot)
}

// Normalizer re-encodes a clip to the common output format.
type Normalizer interface {
	Normalize(ctx context.Context, in, out string, chain overlay.Chain) error
}

// Selector lists the pool and normalizes each selected slot.
type Selector struct {
	Dir        string
	Ext        string
	Normalizer Normalizer
	Logger     *slog.Logger
}

// Plan lists the pool and assigns n slots without encoding anything.
func (s Selector) Plan(n int) ([]Asset, error) {
	pool, err := ListPool(s.Dir, s.ext())
	if err != nil {
		return nil, err
	}
	return Select(n, pool), nil
}

// Prepare selects n ads and normalizes every slot into workDir. Reused
// sources are encoded once per slot. An empty or missing pool is not an
// error; the result is simply empty.
func (s Selector) Prepare(ctx context.Context, n int, workDir string) ([]Asset, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.Logger, "ads"))
	if n <= 0 {
		return nil, nil
	}
	assets, err := s.Plan(n)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		logger.Info("no ads available, skipping ads",
			logging.String("ads_dir", s.Dir),
			logging.String("extension", s.ext()),
		)
		return nil, nil
	}
	if s.Normalizer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "ads", "prepare", "no normalizer configured", nil)
	}

	for i := range assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := filepath.Join(workDir, SlotFileName(assets[i].Slot))
		if err := s.Normalizer.Normalize(ctx, assets[i].Source, out, nil); err != nil {
			return nil, fmt.Errorf("normalize ad %s: %w", filepath.Base(assets[i].Source), err)
		}
		assets[i].Path = out
	}
	logger.Info("ads prepared",
		logging.Int("slots", len(assets)),
		logging.String("ads_dir", s.Dir),
	)
	return assets, nil
}

func (s Selector) ext() string {
	if strings.TrimSpace(s.Ext) == "" {
		return ".mp4"
	}
	return s.Ext
}
