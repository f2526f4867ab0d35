/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: render.go
Description: Renders detection results and corpus summaries as an aligned table, JSON
or YAML.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/kleascm/isadetect/pkg/ngram"
	"github.com/kleascm/isadetect/pkg/scan"
	"gopkg.in/yaml.v3"
)

// Format selects the result rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (table, json, yaml)", s)
	}
}

// Row is the flattened form of a detection result.
type Row struct {
	File         string `json:"file" yaml:"file"`
	Range        string `json:"range" yaml:"range"`
	Architecture string `json:"architecture" yaml:"architecture"`
}

// Rows flattens results, rendering empty architectures as unknown.
func Rows(results []scan.DetectionResult) []Row {
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = Row{
			File:         r.SourceID,
			Range:        r.Range.String(),
			Architecture: r.ArchitectureOrUnknown(),
		}
	}
	return rows
}

// Render writes results to w in the given format.
func Render(w io.Writer, format Format, results []scan.DetectionResult) error {
	rows := Rows(results)

	switch format {
	case FormatTable:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "File\tRange\tDetected Architecture")
		fmt.Fprintln(tw, "----\t-----\t---------------------")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.File, r.Range, r.Architecture)
		}
		return tw.Flush()

	default:
		return encode(w, format, rows)
	}
}

// NGramRow is one n-gram rendered as hex bytes.
type NGramRow struct {
	NGram string  `json:"ngram" yaml:"ngram"`
	Freq  float64 `json:"freq" yaml:"freq"`
}

// ArchDetail describes one reference model for `corpus show`.
type ArchDetail struct {
	corpus.ArchStats `yaml:",inline"`
	TopBigrams       []NGramRow `json:"top_bigrams" yaml:"top_bigrams"`
	TopTrigrams      []NGramRow `json:"top_trigrams" yaml:"top_trigrams"`
}

// NGramRows converts model frequencies to printable rows.
func NGramRows(freqs []ngram.Frequency) []NGramRow {
	rows := make([]NGramRow, len(freqs))
	for i, f := range freqs {
		rows[i] = NGramRow{NGram: fmt.Sprintf("% x", f.NGram), Freq: f.Freq}
	}
	return rows
}

// RenderStats writes the corpus summary to w.
func RenderStats(w io.Writer, format Format, stats []corpus.ArchStats) error {
	if format != FormatTable {
		return encode(w, format, stats)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Architecture\tSize\tBigrams\tTrigrams\t")
	fmt.Fprintln(tw, "------------\t----\t-------\t--------\t")
	for _, s := range stats {
		note := ""
		if s.Sentinel {
			note = "(not reported)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", s.Architecture, s.Size, s.Bigrams, s.Trigrams, note)
	}
	return tw.Flush()
}

// RenderArch writes the details of one reference model to w.
func RenderArch(w io.Writer, format Format, detail ArchDetail) error {
	if format != FormatTable {
		return encode(w, format, detail)
	}

	fmt.Fprintf(w, "Architecture:  %s\n", detail.Architecture)
	fmt.Fprintf(w, "Corpus size:   %d bytes\n", detail.Size)
	fmt.Fprintf(w, "Bigrams:       %d distinct, floor %.3g\n", detail.Bigrams, detail.BigramFloor)
	fmt.Fprintf(w, "Trigrams:      %d distinct, floor %.3g\n", detail.Trigrams, detail.TrigramFloor)
	if detail.Sentinel {
		fmt.Fprintln(w, "Sentinel:      yes, never reported as a detection")
	}

	for _, section := range []struct {
		title string
		rows  []NGramRow
	}{
		{"Top bigrams", detail.TopBigrams},
		{"Top trigrams", detail.TopTrigrams},
	} {
		fmt.Fprintf(w, "\n%s:\n", section.title)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range section.rows {
			fmt.Fprintf(tw, "  %s\t%.6f\n", r.NGram, r.Freq)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func encode(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}
