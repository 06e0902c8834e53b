package aan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = `id = {P08-1001}
author = {Smith, John; Doe, Jane}
title = {Parsing Things}
venue = {ACL}
year = {2008}

id = {P10-2002}
author = {Doe, Jane;Ivanova, Elena}
title = {More {Nested} Things}
venue = {COLING}
year = {2010}

id = {P08-1001}
author = {Duplicate, Entry}
title = {Dup}
venue = {ACL}
year = {2008}
`

func TestParseMetadata(t *testing.T) {
	papers, err := ParseMetadata(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	want := []Paper{
		{ID: "P08-1001", Authors: []string{"Smith, John", "Doe, Jane"}, Title: "Parsing Things", Venue: "ACL", Year: 2008},
		{ID: "P10-2002", Authors: []string{"Doe, Jane", "Ivanova, Elena"}, Title: "More {Nested", Venue: "COLING", Year: 2010},
	}
	if diff := cmp.Diff(want, papers); diff != "" {
		t.Errorf("ParseMetadata() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMetadata_Latin1(t *testing.T) {
	// "Gómez" in ISO-8859-1
	data := []byte("id = {X}\nauthor = {G\xf3mez, Ana}\ntitle = {T}\nvenue = {V}\nyear = {2012}\n")
	papers, err := ParseMetadata(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if got := papers[0].Authors[0]; got != "Gómez, Ana" {
		t.Errorf("author = %q, want Gómez, Ana", got)
	}
}

func TestParseMetadata_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad year", "id = {X}\nyear = {twenty}\n"},
		{"garbage line", "id = {X}\nthis is not metadata\n"},
		{"missing id", "author = {A, B}\nyear = {2001}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMetadata(strings.NewReader(tt.input)); err == nil {
				t.Error("ParseMetadata() expected error")
			}
		})
	}
}

func TestAuthors(t *testing.T) {
	papers, _ := ParseMetadata(strings.NewReader(sample))

	got := Authors(papers, 2008)
	if diff := cmp.Diff([]string{"Doe, Jane", "Ivanova, Elena"}, got); diff != "" {
		t.Errorf("Authors(after 2008) mismatch (-want +got):\n%s", diff)
	}

	all := Authors(papers, 0)
	if diff := cmp.Diff([]string{"Smith, John", "Doe, Jane", "Ivanova, Elena"}, all); diff != "" {
		t.Errorf("Authors(all) mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitAuthors(t *testing.T) {
	got := SplitAuthors(" A, B ;; C, D;")
	if diff := cmp.Diff([]string{"A, B", "C, D"}, got); diff != "" {
		t.Errorf("SplitAuthors() mismatch (-want +got):\n%s", diff)
	}
}
