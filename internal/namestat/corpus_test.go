package namestat

import (
	"testing"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/namelist"
)

func knownAuthors() namelist.Gendered {
	return namelist.Gendered{
		Male: namelist.NewSet(
			"Smith, Robert", "Jones, Robert", "Brown, Robert",
			"Miller, Peter James", "Wilson, Peter", "Moore, Peter Paul",
			"Clark, Andrea",
		),
		Female: namelist.NewSet(
			"Davis, Laura", "Evans, Laura", "Green, Laura Anne", "Hall, Laura",
			"Rossi, Andrea", "Bianchi, Andrea", "Verdi, Andrea",
		),
	}
}

func TestCorpusStats_Classify(t *testing.T) {
	cs := NewCorpusStats(knownAuthors())

	tests := []struct {
		name   string
		in     string
		single bool
		want   gender.Gender
	}{
		{"full male", "Taylor, Robert", false, gender.Male},
		{"full female", "Taylor, Laura", false, gender.Female},
		{"single token male", "Taylor, Peter K.", true, gender.Male},
		{"full misses multi-token", "Taylor, Peter K.", false, gender.Unknown},
		{"ambiguous", "Taylor, Andrea", false, gender.Unknown},
		{"no comma", "Taylor", false, gender.Unknown},
		{"short first", "Taylor, Al", false, gender.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cs.Classify(tt.in, tt.single); got != tt.want {
				t.Errorf("Classify(%q, %v) = %v, want %v", tt.in, tt.single, got, tt.want)
			}
		})
	}
}

func TestCorpusStats_Resolve(t *testing.T) {
	cs := NewCorpusStats(knownAuthors())

	g, conflict := cs.Resolve("Taylor, Peter K.")
	if g != gender.Male || conflict {
		t.Errorf("Resolve() = %v, %v; want male, false", g, conflict)
	}

	g, conflict = cs.Resolve("Taylor, Andrea")
	if g != gender.Unknown || conflict {
		t.Errorf("Resolve() = %v, %v; want unknown, false", g, conflict)
	}
}
