/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner.go
Description: Adaptive multi-resolution window scanner. Classifies the whole buffer
first and only falls back to overlapping windows, halving their size until something
is detected, when the whole buffer gives no answer.
*/

package scan

import (
	"io"

	"github.com/kleascm/isadetect/pkg/ngram"
	"github.com/sirupsen/logrus"
)

// MinHalfWidth is the smallest half window tried before giving up.
const MinHalfWidth = 0x40

// Predictor classifies one sample model.
type Predictor interface {
	Predict(sample *ngram.Model) (string, bool)
}

// Scanner drives a Predictor over a buffer.
type Scanner struct {
	predictor Predictor
	logger    logrus.FieldLogger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for pass and window traces.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scanner) { s.logger = l }
}

// New creates a scanner using predictor for every window.
func New(predictor Predictor, opts ...Option) *Scanner {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Scanner{predictor: predictor, logger: discard}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns the detections for data. An empty slice means nothing was
// detected at any resolution.
func (s *Scanner) Scan(data []byte, sourceID string) []DetectionResult {
	if arch, ok := s.predictor.Predict(ngram.NewSample(sourceID, data)); ok {
		return []DetectionResult{{
			SourceID:     sourceID,
			Range:        Range{Whole: true},
			Architecture: arch,
		}}
	}

	for hw := InitialHalfWidth(len(data)); hw >= MinHalfWidth; hw /= 2 {
		s.logger.WithFields(logrus.Fields{
			"file":        sourceID,
			"window_size": hw * 2,
		}).Info("Window pass")

		if res := s.pass(data, sourceID, hw); len(res) > 0 {
			return res
		}
	}
	return nil
}

// pass walks data with windows of 2*hw bytes starting every hw bytes.
func (s *Scanner) pass(data []byte, sourceID string, hw int) []DetectionResult {
	var res []DetectionResult
	emit := func(g guess) {
		res = append(res, DetectionResult{
			SourceID:     sourceID,
			Range:        Range{Start: g.start, End: g.end},
			Architecture: g.arch,
		})
		s.logger.WithFields(logrus.Fields{
			"file":  sourceID,
			"arch":  g.arch,
			"range": Range{Start: g.start, End: g.end}.String(),
		}).Info("Detection")
	}

	debug := debugEnabled(s.logger)
	t := newTracker(hw)
	for start := 0; start < len(data); start += hw {
		end := min(len(data), start+2*hw)
		if debug {
			s.logger.WithFields(logrus.Fields{
				"file":  sourceID,
				"range": Range{Start: start, End: end}.String(),
			}).Debug("Window")
		}

		arch, ok := s.predictor.Predict(ngram.NewSample(sourceID, data[start:end]))
		if g, closed := t.observe(arch, ok, start, end); closed {
			emit(g)
		}
	}
	// A run still open at the end of the buffer is not reported.
	return res
}

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

// InitialHalfWidth picks the first half window size from the buffer length.
func InitialHalfWidth(n int) int {
	switch {
	case n <= 0x1000:
		return 0x100
	case n <= 0x8000:
		return 0x200
	case n <= 0x20000:
		return 0x400
	case n <= 0x100000:
		return 0x800
	default:
		return (n / 100) &^ 0xFFF
	}
}
