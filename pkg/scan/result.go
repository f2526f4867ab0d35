/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: result.go
Description: Detection results produced by the window scanner.
*/

package scan

import "fmt"

// WholeFile is the range descriptor of a whole-buffer detection.
const WholeFile = "Whole file"

// Unknown is the architecture reported when nothing was detected.
const Unknown = "unknown"

// Range is a byte range [Start, End) or the whole buffer.
type Range struct {
	Whole bool `json:"whole" yaml:"whole"`
	Start int  `json:"start" yaml:"start"`
	End   int  `json:"end" yaml:"end"`
}

func (r Range) String() string {
	if r.Whole {
		return WholeFile
	}
	return fmt.Sprintf("0x%x-0x%x", r.Start, r.End)
}

// Len returns the number of bytes covered by a concrete range.
func (r Range) Len() int { return r.End - r.Start }

// DetectionResult is one detected architecture for a source buffer.
// An empty Architecture means unknown.
type DetectionResult struct {
	SourceID     string `json:"file" yaml:"file"`
	Range        Range  `json:"range" yaml:"range"`
	Architecture string `json:"architecture,omitempty" yaml:"architecture,omitempty"`
}

// ArchitectureOrUnknown returns the architecture or "unknown".
func (d DetectionResult) ArchitectureOrUnknown() string {
	if d.Architecture == "" {
		return Unknown
	}
	return d.Architecture
}

// UnknownResult is the row reported for a buffer with no detection at all.
func UnknownResult(sourceID string) DetectionResult {
	return DetectionResult{SourceID: sourceID, Range: Range{Whole: true}}
}
