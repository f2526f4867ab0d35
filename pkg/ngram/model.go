/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: model.go
Description: Smoothed byte n-gram frequency models. A model holds sparse bigram and
trigram probability tables for one buffer plus the floor probability given to every
n-gram that was never observed.
*/

package ngram

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

const (
	// BigramSpace is the number of possible bigrams (256^2).
	BigramSpace = 1 << 16
	// TrigramSpace is the number of possible trigrams (256^3).
	TrigramSpace = 1 << 24
)

// ErrInvalidReference is returned when a reference model cannot be used as a
// divergence denominator.
var ErrInvalidReference = errors.New("invalid reference model")

// Model is an immutable smoothed n-gram frequency model for one buffer.
// Keys are packed big-endian: b0<<8|b1 for bigrams, b0<<16|b1<<8|b2 for trigrams.
type Model struct {
	label string
	size  int

	bigrams  map[uint32]float64
	trigrams map[uint32]float64

	bigramFloor  float64
	trigramFloor float64

	bigramMass  float64 // Q for bigrams
	trigramMass float64 // Q for trigrams
}

// Build counts every bigram and trigram of data and normalizes the counts with
// additive smoothing k spread over the whole 256^n alphabet.
func Build(label string, data []byte, k float64) *Model {
	bg := make(map[uint32]float64)
	tg := make(map[uint32]float64)

	for i := 0; i+1 < len(data); i++ {
		key := uint32(data[i])<<8 | uint32(data[i+1])
		if c, ok := bg[key]; ok {
			bg[key] = c + 1
		} else {
			bg[key] = 1 + k
		}
	}
	for i := 0; i+2 < len(data); i++ {
		key := uint32(data[i])<<16 | uint32(data[i+1])<<8 | uint32(data[i+2])
		if c, ok := tg[key]; ok {
			tg[key] = c + 1
		} else {
			tg[key] = 1 + k
		}
	}

	m := &Model{
		label:    label,
		size:     len(data),
		bigrams:  bg,
		trigrams: tg,
	}
	m.bigramMass, m.bigramFloor = normalize(bg, BigramSpace, k)
	m.trigramMass, m.trigramFloor = normalize(tg, TrigramSpace, k)
	return m
}

// normalize turns counts into frequencies in place and returns Q and the floor.
func normalize(counts map[uint32]float64, space int, k float64) (float64, float64) {
	var sum float64
	for _, c := range counts {
		sum += c
	}
	q := k*float64(space-len(counts)) + sum
	if q == 0 {
		return 0, 0
	}
	for key, c := range counts {
		counts[key] = c / q
	}
	return q, k / q
}

// NewSample builds an unsmoothed model for the buffer being classified.
func NewSample(label string, data []byte) *Model {
	return Build(label, data, 0)
}

// Label returns the architecture name or sample identifier.
func (m *Model) Label() string { return m.label }

// Size returns the length of the buffer the model was built from.
func (m *Model) Size() int { return m.size }

// DistinctBigrams returns the number of bigrams observed.
func (m *Model) DistinctBigrams() int { return len(m.bigrams) }

// DistinctTrigrams returns the number of trigrams observed.
func (m *Model) DistinctTrigrams() int { return len(m.trigrams) }

// BigramFloor returns the probability of any unobserved bigram.
func (m *Model) BigramFloor() float64 { return m.bigramFloor }

// TrigramFloor returns the probability of any unobserved trigram.
func (m *Model) TrigramFloor() float64 { return m.trigramFloor }

// BigramFreq returns the probability of the bigram (a, b), falling back to the floor.
func (m *Model) BigramFreq(a, b byte) float64 {
	if f, ok := m.bigrams[uint32(a)<<8|uint32(b)]; ok {
		return f
	}
	return m.bigramFloor
}

// TrigramFreq returns the probability of the trigram (a, b, c), falling back to the floor.
func (m *Model) TrigramFreq(a, b, c byte) float64 {
	if f, ok := m.trigrams[uint32(a)<<16|uint32(b)<<8|uint32(c)]; ok {
		return f
	}
	return m.trigramFloor
}

// BigramMass returns the sum of observed bigram frequencies plus the floor mass
// of the unobserved remainder. It is 1 for every model with Q > 0.
func (m *Model) BigramMass() float64 {
	return totalMass(m.bigrams, m.bigramFloor, BigramSpace)
}

// TrigramMass is BigramMass for trigrams.
func (m *Model) TrigramMass() float64 {
	return totalMass(m.trigrams, m.trigramFloor, TrigramSpace)
}

func totalMass(freqs map[uint32]float64, floor float64, space int) float64 {
	var sum float64
	for _, f := range freqs {
		sum += f
	}
	return sum + floor*float64(space-len(freqs))
}

// Reference is a model that is safe to use as a divergence denominator:
// it was built with k > 0, so every n-gram has a non-zero probability.
type Reference struct {
	*Model
	smoothing float64
}

// NewReference builds a reference model. The label must be non-empty and the
// smoothing constant strictly positive.
func NewReference(label string, data []byte, k float64) (*Reference, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: empty label", ErrInvalidReference)
	}
	if !(k > 0) {
		return nil, fmt.Errorf("%w: %s: smoothing must be positive, got %v", ErrInvalidReference, label, k)
	}
	m := Build(label, data, k)
	if m.bigramMass <= 0 || m.trigramMass <= 0 {
		return nil, fmt.Errorf("%w: %s: zero normalizing mass", ErrInvalidReference, label)
	}
	return &Reference{Model: m, smoothing: k}, nil
}

// Smoothing returns the constant the reference was built with.
func (r *Reference) Smoothing() float64 { return r.smoothing }

// Frequency is one observed n-gram and its probability.
type Frequency struct {
	NGram []byte  `json:"ngram" yaml:"ngram"`
	Freq  float64 `json:"freq" yaml:"freq"`
}

// TopBigrams returns the n most frequent bigrams, most frequent first.
func (m *Model) TopBigrams(n int) []Frequency {
	return top(m.bigrams, 2, n)
}

// TopTrigrams returns the n most frequent trigrams, most frequent first.
func (m *Model) TopTrigrams(n int) []Frequency {
	return top(m.trigrams, 3, n)
}

func top(freqs map[uint32]float64, width, n int) []Frequency {
	keys := make([]uint32, 0, len(freqs))
	for k := range freqs {
		keys = append(keys, k)
	}
	// Ties are broken by key so the order is deterministic.
	slices.SortFunc(keys, func(a, b uint32) int {
		fa, fb := freqs[a], freqs[b]
		switch {
		case fa > fb:
			return -1
		case fa < fb:
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	})
	if n > len(keys) {
		n = len(keys)
	}

	out := make([]Frequency, n)
	for i, k := range keys[:n] {
		b := make([]byte, width)
		for j := width - 1; j >= 0; j-- {
			b[j] = byte(k)
			k >>= 8
		}
		out[i] = Frequency{NGram: b, Freq: freqs[keys[i]]}
	}
	return out
}
