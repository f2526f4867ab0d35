package reporting_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/kleascm/isadetect/pkg/ngram"
	"github.com/kleascm/isadetect/pkg/reporting"
	"github.com/kleascm/isadetect/pkg/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var sampleResults = []scan.DetectionResult{
	{SourceID: "fw.bin", Range: scan.Range{Whole: true}, Architecture: "ARMel"},
	{SourceID: "dump.bin", Range: scan.Range{Start: 0x400, End: 0x1c00}, Architecture: "MIPSel"},
	scan.UnknownResult("blob.bin"),
}

func TestParseFormat(t *testing.T) {
	f, err := reporting.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, reporting.FormatJSON, f)

	_, err = reporting.ParseFormat("csv")
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.Render(&buf, reporting.FormatTable, sampleResults))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"File", "Range", "Detected", "Architecture"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"fw.bin", "Whole", "file", "ARMel"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"dump.bin", "0x400-0x1c00", "MIPSel"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"blob.bin", "Whole", "file", "unknown"}, strings.Fields(lines[4]))
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.Render(&buf, reporting.FormatJSON, sampleResults))
	assert.Contains(t, buf.String(), `"range": "0x400-0x1c00"`)
	assert.Contains(t, buf.String(), `"architecture": "unknown"`)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.Render(&buf, reporting.FormatYAML, sampleResults))

	var rows []reporting.Row
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rows))
	assert.Equal(t, reporting.Rows(sampleResults), rows)
}

func TestRenderUnknownFormat(t *testing.T) {
	assert.Error(t, reporting.Render(&bytes.Buffer{}, "xml", sampleResults))
}

func TestWriteResults(t *testing.T) {
	dir := t.TempDir()
	report := reporting.NewReport("cpu_rec_corpus", 72, 0.01)
	report.Results = sampleResults
	report.AddFailure("missing.bin", errors.New("no such file or directory"))

	_, err := uuid.Parse(report.Session)
	require.NoError(t, err)

	path, err := reporting.WriteResults(dir, report)
	require.NoError(t, err)
	assert.Contains(t, path, report.Session)

	loaded, err := reporting.ReadResults(path)
	require.NoError(t, err)
	assert.Equal(t, report.Session, loaded.Session)
	assert.Equal(t, 72, loaded.Architectures)
	assert.Equal(t, sampleResults, loaded.Results)
	assert.Equal(t, "no such file or directory", loaded.Failed["missing.bin"])
}

var sampleStats = []corpus.ArchStats{
	{Architecture: "ARMel", Size: 4096, Bigrams: 1800, Trigrams: 3500},
	{Architecture: "_zero", Size: 1024, Bigrams: 1, Trigrams: 1, Sentinel: true},
}

func TestRenderStatsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.RenderStats(&buf, reporting.FormatTable, sampleStats))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"ARMel", "4096", "1800", "3500"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"_zero", "1024", "1", "1", "(not", "reported)"}, strings.Fields(lines[3]))
}

func TestRenderStatsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.RenderStats(&buf, reporting.FormatYAML, sampleStats))

	var stats []corpus.ArchStats
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &stats))
	assert.Equal(t, sampleStats, stats)
}

func TestRenderArch(t *testing.T) {
	m := ngram.NewSample("x", []byte{0x55, 0x48, 0x55, 0x48, 0x55, 0x90})
	detail := reporting.ArchDetail{
		ArchStats:   sampleStats[0],
		TopBigrams:  reporting.NGramRows(m.TopBigrams(1)),
		TopTrigrams: reporting.NGramRows(m.TopTrigrams(1)),
	}
	assert.Equal(t, "48 55", detail.TopBigrams[0].NGram)

	var buf bytes.Buffer
	require.NoError(t, reporting.RenderArch(&buf, reporting.FormatTable, detail))
	assert.Contains(t, buf.String(), "Architecture:  ARMel")
	assert.Contains(t, buf.String(), "55 48 55  0.500000")

	buf.Reset()
	require.NoError(t, reporting.RenderArch(&buf, reporting.FormatJSON, detail))
	assert.Contains(t, buf.String(), `"architecture": "ARMel"`)
	assert.Contains(t, buf.String(), `"ngram": "55 48 55"`)
}
