package classify

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"
)

func TestPolicyDecide(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name    string
		bigram  RankingEntry
		trigram RankingEntry
		want    string
		reason  Rejection
	}{
		{"Agreement", RankingEntry{"ARMel", 0.4}, RankingEntry{"ARMel", 2.1}, "ARMel", Accepted},
		{"Disagreement", RankingEntry{"ARMel", 0.4}, RankingEntry{"ARMhf", 2.1}, "", RejectDisagreement},
		{"Sentinel", RankingEntry{"_words", 0.1}, RankingEntry{"_words", 0.2}, "", RejectSentinel},
		{"OCamlBelow", RankingEntry{"OCaml", 1.0}, RankingEntry{"OCaml", 9}, "OCaml", Accepted},
		{"OCamlAbove", RankingEntry{"OCaml", 1.01}, RankingEntry{"OCaml", 0.5}, "", RejectOverride},
		{"IA64Below", RankingEntry{"IA-64", 2.99}, RankingEntry{"IA-64", 9}, "IA-64", Accepted},
		{"IA64Above", RankingEntry{"IA-64", 3.5}, RankingEntry{"IA-64", 0.5}, "", RejectOverride},
		{"XmosAbove", RankingEntry{"xmox_xs2a", 3.1}, RankingEntry{"xmox_xs2a", 1}, "", RejectOverride},
		{"NoOverride", RankingEntry{"X86-64", 7.5}, RankingEntry{"X86-64", 9}, "X86-64", Accepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := p.Evaluate(tt.bigram, tt.trigram)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reason, reason)

			arch, ok := p.Decide(tt.bigram, tt.trigram)
			assert.Equal(t, tt.reason == Accepted, ok)
			assert.Equal(t, tt.want, arch)
		})
	}
}

func TestPolicyWithoutSentinel(t *testing.T) {
	p := Policy{}
	arch, ok := p.Decide(RankingEntry{"_words", 0.1}, RankingEntry{"_words", 0.2})
	assert.True(t, ok)
	assert.Equal(t, "_words", arch)
}

func TestCompareEntriesTotalOrder(t *testing.T) {
	entries := []RankingEntry{
		{"nan", math.NaN()},
		{"b", 2},
		{"inf", math.Inf(1)},
		{"a", 1},
		{"c", 2},
	}

	assert.NotPanics(t, func() { slices.SortStableFunc(entries, compareEntries) })

	var order []string
	for _, e := range entries {
		order = append(order, e.Architecture)
	}
	assert.Equal(t, []string{"a", "b", "c", "nan", "inf"}, order)
}

func TestDebugEnabled(t *testing.T) {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	assert.False(t, debugEnabled(l))
	assert.False(t, debugEnabled(l.WithField("file", "a.bin")))

	l.SetLevel(logrus.DebugLevel)
	assert.True(t, debugEnabled(l))
	assert.True(t, debugEnabled(l.WithField("file", "a.bin")))
}
