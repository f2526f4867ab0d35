/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classifier.go
Description: Ranks every reference model by divergence against a sample and applies
the detection policy to produce a single architecture label or no match.
*/

package classify

import (
	"errors"
	"io"
	"math"

	"github.com/kleascm/isadetect/pkg/ngram"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// ErrNoReferences is returned when a classifier is built without any reference model.
var ErrNoReferences = errors.New("no reference models")

// RankingEntry is one architecture's divergence in a ranking.
type RankingEntry struct {
	Architecture string  `json:"architecture"`
	Divergence   float64 `json:"divergence"`
}

// Classifier predicts the architecture of sample models. It is safe for
// concurrent use: references and policy are never mutated.
type Classifier struct {
	refs   []*ngram.Reference
	policy Policy
	logger logrus.FieldLogger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPolicy replaces the default detection policy.
func WithPolicy(p Policy) Option {
	return func(c *Classifier) { c.policy = p }
}

// WithLogger sets the logger used for ranking traces.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Classifier) { c.logger = l }
}

// New creates a classifier over refs. Reference order is the tie-break order.
func New(refs []*ngram.Reference, opts ...Option) (*Classifier, error) {
	if len(refs) == 0 {
		return nil, ErrNoReferences
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Classifier{
		refs:   refs,
		policy: DefaultPolicy(),
		logger: discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Rank returns the bigram and trigram rankings, each ascending by divergence.
func (c *Classifier) Rank(sample *ngram.Model) ([]RankingEntry, []RankingEntry) {
	bigrams := make([]RankingEntry, 0, len(c.refs))
	trigrams := make([]RankingEntry, 0, len(c.refs))

	for _, ref := range c.refs {
		d := ngram.KL(sample, ref)
		bigrams = append(bigrams, RankingEntry{Architecture: ref.Label(), Divergence: d.Bigrams})
		trigrams = append(trigrams, RankingEntry{Architecture: ref.Label(), Divergence: d.Trigrams})
	}

	slices.SortStableFunc(bigrams, compareEntries)
	slices.SortStableFunc(trigrams, compareEntries)
	return bigrams, trigrams
}

// Predict returns the detected architecture, or false when there is no match.
// A sample shorter than two bytes has no n-grams and never matches.
func (c *Classifier) Predict(sample *ngram.Model) (string, bool) {
	debug := debugEnabled(c.logger)

	if sample.DistinctBigrams() == 0 {
		if debug {
			c.logger.WithFields(logrus.Fields{
				"sample": sample.Label(),
				"reason": RejectNoEvidence.String(),
			}).Debug("No match")
		}
		return "", false
	}

	bigrams, trigrams := c.Rank(sample)
	if debug {
		c.logger.WithFields(logrus.Fields{
			"sample":   sample.Label(),
			"bigrams":  head(bigrams, 2),
			"trigrams": head(trigrams, 2),
		}).Debug("Ranking computed")
	}

	arch, reason := c.policy.Evaluate(bigrams[0], trigrams[0])
	if reason != Accepted {
		if debug {
			c.logger.WithFields(logrus.Fields{
				"sample":    sample.Label(),
				"candidate": bigrams[0].Architecture,
				"reason":    reason.String(),
			}).Debug("No match")
		}
		return "", false
	}
	return arch, true
}

// Policy returns the policy in use.
func (c *Classifier) Policy() Policy { return c.policy }

// References returns the number of reference models.
func (c *Classifier) References() int { return len(c.refs) }

// compareEntries orders by divergence with every non-finite value after every
// finite one. NaN and +Inf compare equal so the stable sort keeps their order.
func compareEntries(a, b RankingEntry) int {
	af, bf := isFinite(a.Divergence), isFinite(b.Divergence)
	switch {
	case af && bf:
		if a.Divergence < b.Divergence {
			return -1
		}
		if a.Divergence > b.Divergence {
			return 1
		}
		return 0
	case af:
		return -1
	case bf:
		return 1
	default:
		return 0
	}
}

// debugEnabled reports whether l would emit debug entries. Unknown
// FieldLogger implementations are assumed to.
func debugEnabled(l logrus.FieldLogger) bool {
	switch v := l.(type) {
	case *logrus.Logger:
		return v.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return v.Logger.IsLevelEnabled(logrus.DebugLevel)
	default:
		return true
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func head(entries []RankingEntry, n int) []RankingEntry {
	if len(entries) < n {
		return entries
	}
	return entries[:n]
}
