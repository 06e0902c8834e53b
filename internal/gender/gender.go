// Package gender defines the gender labels and classification results shared
// by every classifier in the cascade.
package gender

import (
	"fmt"
	"strings"
)

// Gender is the inferred gender of an author.
type Gender int

// Ordinals match the labels stored by earlier runs of the pipeline.
const (
	Male Gender = iota
	Female
	Unknown
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// Known reports whether g is Male or Female.
func (g Gender) Known() bool {
	return g == Male || g == Female
}

// Parse converts a label (male, female, unknown, m, f) to a Gender.
func Parse(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	case "unknown":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("invalid gender %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Gender) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Source names the classifier that produced a result.
type Source string

const (
	SourceManual      Source = "manual"
	SourceStatistical Source = "statistical"
	SourceIndian      Source = "indian"
	SourceCensus      Source = "census"
	SourceGPeters     Source = "gpeters"
	SourceMemo        Source = "memo"
	SourceSuffix      Source = "suffix"
	SourceNamsor      Source = "namsor"
	SourceFace        Source = "face"
	SourceKnownList   Source = "known-list"
	SourceInitials    Source = "initials"
	SourceCorpusStats Source = "corpus-stats"
	SourceNone        Source = "none"
)

// Result is the outcome of classifying one author name.
type Result struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Source Source `json:"source"`
	Detail string `json:"detail,omitempty"`
}

// Known reports whether the result carries a male or female label.
func (r Result) Known() bool {
	return r.Gender.Known()
}

// Unclassified returns an Unknown result for name.
func Unclassified(name, detail string) Result {
	return Result{Name: name, Gender: Unknown, Source: SourceNone, Detail: detail}
}
