package namestat

import (
	"strings"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/namelist"
)

// minCorpusNameLen excludes short first names, which are mostly initials or
// nicknames.
const minCorpusNameLen = 3

// CorpusStats counts the first names of already classified authors.
type CorpusStats struct {
	maleFull     map[string]int
	femaleFull   map[string]int
	maleSingle   map[string]int
	femaleSingle map[string]int
}

// NewCorpusStats builds counters from known female and male author names
// ("Last, First Middle").
func NewCorpusStats(known namelist.Gendered) *CorpusStats {
	cs := &CorpusStats{
		maleFull:     make(map[string]int),
		femaleFull:   make(map[string]int),
		maleSingle:   make(map[string]int),
		femaleSingle: make(map[string]int),
	}
	for n := range known.Male {
		countFirst(n, cs.maleFull, cs.maleSingle)
	}
	for n := range known.Female {
		countFirst(n, cs.femaleFull, cs.femaleSingle)
	}
	return cs
}

func countFirst(full string, fullCounts, singleCounts map[string]int) {
	parts := strings.Split(full, ",")
	if len(parts) < 2 {
		return
	}
	first := strings.TrimSpace(parts[1])
	if len([]rune(first)) > minCorpusNameLen {
		fullCounts[first]++
	}
	if fields := strings.Fields(first); len(fields) > 0 && len([]rune(fields[0])) > minCorpusNameLen {
		singleCounts[fields[0]]++
	}
}

// Classify labels an author by how often its first name (whole first-name
// part, or only the first token when single is set) appears among known
// authors of each gender. A name must occur more than twice for one gender
// and never for the other.
func (cs *CorpusStats) Classify(full string, single bool) gender.Gender {
	parts := strings.Split(strings.TrimSpace(full), ",")
	if len(parts) < 2 || len([]rune(parts[1])) <= 2 {
		return gender.Unknown
	}
	first := strings.TrimSpace(parts[1])
	var cm, cf int
	if single {
		fields := strings.Fields(first)
		if len(fields) == 0 {
			return gender.Unknown
		}
		cm, cf = cs.maleSingle[fields[0]], cs.femaleSingle[fields[0]]
	} else {
		cm, cf = cs.maleFull[first], cs.femaleFull[first]
	}
	if cm > cf && cf == 0 && cm > 2 {
		return gender.Male
	}
	if cf > cm && cm == 0 && cf > 2 {
		return gender.Female
	}
	return gender.Unknown
}

// Resolve combines the whole-first-name and first-token answers. It reports
// a conflict when both are known and disagree.
func (cs *CorpusStats) Resolve(full string) (g gender.Gender, conflict bool) {
	c1 := cs.Classify(full, false)
	c2 := cs.Classify(full, true)
	switch {
	case c1 == c2:
		return c1, false
	case c1 == gender.Unknown:
		return c2, false
	case c2 == gender.Unknown:
		return c1, false
	}
	return gender.Unknown, true
}
