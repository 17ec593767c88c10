package workflow

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"adreel/internal/services"
)

// MovieJob is one movie to turn into a program.
type MovieJob struct {
	ID string
	// Source is the movie file.
	Source string
	// RelDir is the movie's directory relative to the movies root.
	RelDir    string
	OutputDir string
}

// NewMovieJob builds a job for source writing into outputDir.
func NewMovieJob(source, relDir, outputDir string) MovieJob {
	return MovieJob{
		ID:        uuid.NewString()[:8],
		Source:    source,
		RelDir:    relDir,
		OutputDir: outputDir,
	}
}

// Name is the movie file name.
func (j MovieJob) Name() string {
	return filepath.Base(j.Source)
}

// Stem is the movie file name without its extension.
func (j MovieJob) Stem() string {
	base := filepath.Base(j.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath is the finished program.
func (j MovieJob) OutputPath() string {
	return filepath.Join(j.OutputDir, j.Stem()+".mkv")
}

// IntermediatePath is the stream-copied concatenation before the final encode.
func (j MovieJob) IntermediatePath() string {
	return filepath.Join(j.OutputDir, j.Stem()+"_intermediate.mkv")
}

// Discover walks moviesDir for files ending in ext and returns one job per
// movie in path order. Output directories mirror the relative layout under
// outputDir. When outputDir lies inside moviesDir it is skipped, and leftover
// intermediate files are ignored. Two movies that map to the same output, such
// as A.mkv and A.MKV, are rejected with ErrValidation.
func Discover(moviesDir, outputDir, ext string) ([]MovieJob, error) {
	if strings.TrimSpace(ext) == "" {
		ext = ".mkv"
	}
	ext = strings.ToLower(ext)
	root := filepath.Clean(moviesDir)
	outRoot := filepath.Clean(outputDir)

	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && path == outRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ext {
			return nil
		}
		if strings.HasSuffix(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())), "_intermediate") {
			return nil
		}
		sources = append(sources, path)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workflow", "discover", moviesDir, err)
	}
	sort.Strings(sources)

	jobs := make([]MovieJob, 0, len(sources))
	claimed := make(map[string]string, len(sources))
	for _, source := range sources {
		rel, err := filepath.Rel(root, filepath.Dir(source))
		if err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "workflow", "discover", source, err)
		}
		job := NewMovieJob(source, rel, filepath.Join(outRoot, rel))
		if other, ok := claimed[job.OutputPath()]; ok {
			msg := fmt.Sprintf("%s and %s would both write %s", other, source, job.OutputPath())
			return nil, services.Wrap(services.ErrValidation, "workflow", "discover", msg, nil)
		}
		claimed[job.OutputPath()] = source
		jobs = append(jobs, job)
	}
	return jobs, nil
}
