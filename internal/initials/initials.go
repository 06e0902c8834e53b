// Package initials resolves authors recorded only by their initials
// ("Smith, J. R.") to a fully named author with the same surname whose
// gender is already known.
package initials

import (
	"sort"
	"strings"
	"unicode"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/namelist"
)

// Strength grades how well initials fit a first name.
type Strength int

const (
	None Strength = iota
	Weak
	Probable
	Confident
)

func (s Strength) String() string {
	switch s {
	case Weak:
		return "weak"
	case Probable:
		return "probable"
	case Confident:
		return "confident"
	default:
		return "none"
	}
}

// Match grades initials such as "J. R." against a first name such as
// "John Robert".
func Match(inits, first string) Strength {
	inits = strings.TrimSpace(strings.ReplaceAll(inits, "Dr.", ""))
	first = strings.TrimSpace(first)
	if inits == "" || first == "" {
		return None
	}

	initTokens := strings.Fields(inits)
	nameTokens := strings.Fields(first)
	if len(initTokens) == len(nameTokens) {
		all := true
		for i := range initTokens {
			if firstRune(initTokens[i]) != firstRune(nameTokens[i]) {
				all = false
				break
			}
		}
		if all {
			return Confident
		}
	}

	if firstRune(inits) == firstRune(first) {
		return Probable
	}

	initCaps := capitals(inits)
	nameCaps := capitals(first)
	if len(initCaps) > 0 && equalSets(initCaps, nameCaps) {
		return Confident
	}
	for r := range initCaps {
		if _, ok := nameCaps[r]; ok {
			return Weak
		}
	}
	return None
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func capitals(s string) map[rune]struct{} {
	out := make(map[rune]struct{})
	for _, r := range s {
		if unicode.IsUpper(r) {
			out[r] = struct{}{}
		}
	}
	return out
}

func equalSets(a, b map[rune]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if _, ok := b[r]; !ok {
			return false
		}
	}
	return true
}

// Index groups known authors by surname.
type Index struct {
	male   map[string][]string
	female map[string][]string
}

// NewIndex builds an index from known "Last, First" author names.
func NewIndex(known namelist.Gendered) *Index {
	return &Index{
		male:   bySurname(known.Male),
		female: bySurname(known.Female),
	}
}

func bySurname(names namelist.Set) map[string][]string {
	out := make(map[string][]string)
	for n := range names {
		last, first, ok := strings.Cut(n, ", ")
		if !ok {
			continue
		}
		out[last] = append(out[last], first)
	}
	for last := range out {
		sort.Strings(out[last])
	}
	return out
}

// Resolution is a resolved initials-only author.
type Resolution struct {
	Author   string        `json:"author"`
	FullName string        `json:"full_name"`
	Gender   gender.Gender `json:"gender"`
	Strength Strength      `json:"-"`
}

// BestMatch finds the known author that author's initials most likely
// abbreviate. When the surname is used by authors of one gender only, the
// first candidate with any match is taken; otherwise the strongest match
// wins and ties between genders are left unresolved.
func (idx *Index) BestMatch(author string) (Resolution, bool) {
	last, inits, ok := strings.Cut(author, ", ")
	if !ok {
		return Resolution{}, false
	}
	males, hasM := idx.male[last]
	females, hasF := idx.female[last]

	best := func(candidates []string) (string, Strength) {
		var bestName string
		bestS := None
		for _, c := range candidates {
			if s := Match(inits, c); s > bestS {
				bestName, bestS = c, s
			}
		}
		return bestName, bestS
	}

	switch {
	case hasM && !hasF:
		for _, c := range males {
			if s := Match(inits, c); s != None {
				return Resolution{Author: author, FullName: last + ", " + c, Gender: gender.Male, Strength: s}, true
			}
		}
	case hasF && !hasM:
		for _, c := range females {
			if s := Match(inits, c); s != None {
				return Resolution{Author: author, FullName: last + ", " + c, Gender: gender.Female, Strength: s}, true
			}
		}
	case hasM && hasF:
		mName, mS := best(males)
		fName, fS := best(females)
		switch {
		case mS > fS:
			return Resolution{Author: author, FullName: last + ", " + mName, Gender: gender.Male, Strength: mS}, true
		case fS > mS:
			return Resolution{Author: author, FullName: last + ", " + fName, Gender: gender.Female, Strength: fS}, true
		}
	}
	return Resolution{}, false
}
