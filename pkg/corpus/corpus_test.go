/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus_test.go
Description: Tests for corpus directory loading, label extraction, lookups and suggestions.
*/

package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/isadetect/pkg/classify"
	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/kleascm/isadetect/pkg/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"X86-64.corpus": "\x55\x48\x89\xe5\x48\x83\xec\x10\xc9\xc3",
		"ARMel.corpus":  "\x04\xe0\x2d\xe5\x00\x00\xa0\xe1\x1e\xff\x2f\xe1",
		"_words.corpus": "lorem ipsum dolor sit amet",
		"README.txt":    "not a corpus file",
	})

	c, err := corpus.Load(context.Background(), dir, corpus.Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"ARMel", "X86-64", "_words"}, c.Architectures())

	ref, ok := c.Lookup("ARMel")
	require.True(t, ok)
	assert.Equal(t, 12, ref.Size())
	assert.Equal(t, corpus.DefaultSmoothing, ref.Smoothing())

	_, ok = c.Lookup("armel")
	assert.False(t, ok)

	stats := c.Stats(classify.DefaultPolicy())
	require.Len(t, stats, 3)
	assert.Equal(t, "_words", stats[2].Architecture)
	assert.True(t, stats[2].Sentinel)
	assert.False(t, stats[0].Sentinel)
	assert.Equal(t, 11, stats[0].Bigrams)
}

func TestLoadCustomSmoothing(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"MIPSel.corpus": "\x08\x00\xe0\x03\x00\x00\x00\x00"})

	c, err := corpus.Load(context.Background(), dir, corpus.Options{Smoothing: 0.5})
	require.NoError(t, err)
	ref, ok := c.Lookup("MIPSel")
	require.True(t, ok)
	assert.Equal(t, 0.5, ref.Smoothing())

	_, err = corpus.Load(context.Background(), dir, corpus.Options{Smoothing: -1})
	assert.ErrorIs(t, err, ngram.ErrInvalidReference)
}

func TestLoadErrors(t *testing.T) {
	empty := t.TempDir()
	_, err := corpus.Load(context.Background(), empty, corpus.Options{})
	assert.ErrorIs(t, err, corpus.ErrEmptyCorpus)

	_, err = corpus.Load(context.Background(), filepath.Join(empty, "missing"), corpus.Options{})
	assert.Error(t, err)

	file := filepath.Join(empty, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = corpus.Load(context.Background(), file, corpus.Options{})
	assert.ErrorContains(t, err, "is not a valid directory")

	assert.NoError(t, corpus.ValidateDir(empty))
	assert.ErrorIs(t, corpus.ValidateDir(filepath.Join(empty, "missing")), os.ErrNotExist)
	assert.ErrorContains(t, corpus.ValidateDir(file), "is not a valid directory")
}

func TestLoadCancelled(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"SPARC.corpus": "\x9d\xe3\xbf\x98"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := corpus.Load(ctx, dir, corpus.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	_, err := corpus.New(nil)
	assert.ErrorIs(t, err, corpus.ErrEmptyCorpus)

	ref, err := ngram.NewReference("AVR", []byte{0x0c, 0x94, 0x34, 0x00}, 0.01)
	require.NoError(t, err)
	c, err := corpus.New([]*ngram.Reference{ref})
	require.NoError(t, err)
	assert.Equal(t, []string{"AVR"}, c.Architectures())
}

func TestSuggest(t *testing.T) {
	var refs []*ngram.Reference
	for _, arch := range []string{"ARMel", "ARMhf", "X86-64", "MIPSel", "PPCel"} {
		ref, err := ngram.NewReference(arch, []byte(arch), 0.01)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	c, err := corpus.New(refs)
	require.NoError(t, err)

	assert.Equal(t, []string{"ARMel"}, c.Suggest("armel", 1))
	assert.Equal(t, []string{"X86-64"}, c.Suggest("x86_64", 1))
	assert.Len(t, c.Suggest("MIPS", 10), 5)
	assert.Equal(t, "MIPSel", c.Suggest("MIPS", 10)[0])
}

func TestPattern(t *testing.T) {
	assert.Equal(t, filepath.Join("cpu_rec_corpus", "*.corpus"), corpus.Pattern("cpu_rec_corpus"))
}
