/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: policy.go
Description: Disambiguation policy applied to the best bigram and trigram candidates:
agreement between rankings, sentinel labels and per-architecture false positive
overrides.
*/

package classify

import "strings"

// SentinelPrefix marks corpus entries that are not architectures (text, padding).
const SentinelPrefix = "_"

// Policy turns the two best ranking entries into a label or no match.
type Policy struct {
	// SentinelPrefix labels are never reported.
	SentinelPrefix string
	// Overrides rejects a label when its bigram divergence exceeds the threshold.
	Overrides map[string]float64
}

// DefaultPolicy returns the empirically tuned detection policy. The override
// thresholds are part of the detection contract; changing them changes results.
func DefaultPolicy() Policy {
	return Policy{
		SentinelPrefix: SentinelPrefix,
		Overrides: map[string]float64{
			"OCaml":     1.0,
			"IA-64":     3.0,
			"xmox_xs2a": 3.0,
		},
	}
}

// Rejection explains why a prediction produced no match.
type Rejection int

const (
	Accepted Rejection = iota
	RejectDisagreement
	RejectSentinel
	RejectOverride
	RejectNoEvidence
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectDisagreement:
		return "bigram/trigram disagreement"
	case RejectSentinel:
		return "sentinel label"
	case RejectOverride:
		return "probable false positive"
	case RejectNoEvidence:
		return "no n-grams in sample"
	default:
		return "unknown"
	}
}

// Decide applies the agreement, sentinel and override rules in that order.
func (p Policy) Decide(bigram, trigram RankingEntry) (string, bool) {
	arch, r := p.Evaluate(bigram, trigram)
	return arch, r == Accepted
}

// Evaluate is Decide with the reason for a rejection.
func (p Policy) Evaluate(bigram, trigram RankingEntry) (string, Rejection) {
	if bigram.Architecture != trigram.Architecture {
		return "", RejectDisagreement
	}
	arch := bigram.Architecture
	if p.IsSentinel(arch) {
		return "", RejectSentinel
	}
	if limit, ok := p.Overrides[arch]; ok && bigram.Divergence > limit {
		return "", RejectOverride
	}
	return arch, Accepted
}

// IsSentinel reports whether label names a non-architecture corpus entry.
func (p Policy) IsSentinel(label string) bool {
	return p.SentinelPrefix != "" && strings.HasPrefix(label, p.SentinelPrefix)
}
