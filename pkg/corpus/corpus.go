/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus.go
Description: Reference corpus loading. Every "<arch>.corpus" file of a corpus directory
becomes one reference model; models are built concurrently and kept in file order.
*/

package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kleascm/isadetect/pkg/classify"
	"github.com/kleascm/isadetect/pkg/ngram"
	"github.com/sirupsen/logrus"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Extension is the suffix of corpus files.
const Extension = ".corpus"

// DefaultSmoothing is the smoothing constant used for reference models.
const DefaultSmoothing = 0.01

// ErrEmptyCorpus is returned when a corpus directory holds no corpus file.
var ErrEmptyCorpus = errors.New("could not find any file in corpus directory")

// Options controls corpus loading.
type Options struct {
	Smoothing float64
	Workers   int // 0 means runtime.NumCPU()
	Logger    logrus.FieldLogger
}

// Corpus is the immutable set of reference models.
type Corpus struct {
	dir  string
	refs []*ngram.Reference
}

// ArchStats summarizes one reference model.
type ArchStats struct {
	Architecture string  `json:"architecture" yaml:"architecture"`
	Size         int     `json:"size" yaml:"size"`
	Bigrams      int     `json:"bigrams" yaml:"bigrams"`
	Trigrams     int     `json:"trigrams" yaml:"trigrams"`
	BigramFloor  float64 `json:"bigram_floor" yaml:"bigram_floor"`
	TrigramFloor float64 `json:"trigram_floor" yaml:"trigram_floor"`
	Sentinel     bool    `json:"sentinel" yaml:"sentinel"`
}

// Pattern returns the glob matching corpus files in dir.
func Pattern(dir string) string {
	return filepath.Join(dir, "*"+Extension)
}

// ValidateDir checks that dir exists and is a directory.
func ValidateDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("could not open corpus directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a valid directory", dir)
	}
	return nil
}

// Load reads every corpus file of dir and builds its reference model.
func Load(ctx context.Context, dir string, opts Options) (*Corpus, error) {
	if opts.Smoothing == 0 {
		opts.Smoothing = DefaultSmoothing
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	if err := ValidateDir(dir); err != nil {
		return nil, err
	}

	files, err := filepath.Glob(Pattern(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus files: %w", err)
	}
	slices.Sort(files)
	if len(files) == 0 {
		return nil, ErrEmptyCorpus
	}

	refs := make([]*ngram.Reference, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			arch := strings.TrimSuffix(filepath.Base(path), Extension)
			logger.WithFields(logrus.Fields{"file": path, "arch": arch}).Debug("Loading corpus file")

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("could not read %s: %w", path, err)
			}
			ref, err := ngram.NewReference(arch, data, opts.Smoothing)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			logger.WithFields(logrus.Fields{
				"arch":     arch,
				"bytes":    len(data),
				"bigrams":  ref.DistinctBigrams(),
				"trigrams": ref.DistinctTrigrams(),
			}).Debug("Reference model built")

			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Corpus{dir: dir, refs: refs}, nil
}

// New wraps already built references.
func New(refs []*ngram.Reference) (*Corpus, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Corpus{refs: refs}, nil
}

// Dir returns the directory the corpus was loaded from.
func (c *Corpus) Dir() string { return c.dir }

// Len returns the number of reference models.
func (c *Corpus) Len() int { return len(c.refs) }

// References returns the reference models in load order.
func (c *Corpus) References() []*ngram.Reference { return c.refs }

// Architectures returns the reference labels in load order.
func (c *Corpus) Architectures() []string {
	names := make([]string, len(c.refs))
	for i, ref := range c.refs {
		names[i] = ref.Label()
	}
	return names
}

// Lookup returns the reference with the given label.
func (c *Corpus) Lookup(arch string) (*ngram.Reference, bool) {
	for _, ref := range c.refs {
		if ref.Label() == arch {
			return ref, true
		}
	}
	return nil, false
}

// Suggest returns up to max labels closest to name by case-insensitive edit distance.
func (c *Corpus) Suggest(name string, max int) []string {
	type candidate struct {
		arch     string
		distance int
	}
	target := []rune(strings.ToLower(name))
	candidates := make([]candidate, 0, len(c.refs))
	for _, ref := range c.refs {
		d := levenshtein.DistanceForStrings(target, []rune(strings.ToLower(ref.Label())), levenshtein.DefaultOptions)
		candidates = append(candidates, candidate{arch: ref.Label(), distance: d})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return a.distance - b.distance
	})

	if max > len(candidates) {
		max = len(candidates)
	}
	out := make([]string, 0, max)
	for _, cand := range candidates[:max] {
		out = append(out, cand.arch)
	}
	return out
}

// Stats summarizes every reference model in load order.
func (c *Corpus) Stats(policy classify.Policy) []ArchStats {
	stats := make([]ArchStats, len(c.refs))
	for i, ref := range c.refs {
		stats[i] = ArchStats{
			Architecture: ref.Label(),
			Size:         ref.Size(),
			Bigrams:      ref.DistinctBigrams(),
			Trigrams:     ref.DistinctTrigrams(),
			BigramFloor:  ref.BigramFloor(),
			TrigramFloor: ref.TrigramFloor(),
			Sentinel:     policy.IsSentinel(ref.Label()),
		}
	}
	return stats
}
