// Package affiliation maps AAN author names to their institutional
// affiliation using the release's author id tables.
package affiliation

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/aanlab/aang/internal/name"
)

var fieldSep = regexp.MustCompile(`\s+`)

// Index maps author names to affiliations.
type Index struct {
	byName map[string]string
	byKey  map[string]string // keyed by name.Normalize
}

// Load reads author_ids.txt ("<id> <name>") and
// author_affiliation_pairs.txt ("<id> <affiliation>"). Only the part of an
// affiliation before its first comma is kept.
func Load(idsPath, pairsPath string) (*Index, error) {
	byID := make(map[string]string)
	err := eachPair(pairsPath, func(id, aff string) {
		aff, _, _ = strings.Cut(aff, ",")
		byID[id] = strings.TrimSpace(aff)
	})
	if err != nil {
		return nil, err
	}

	idx := &Index{byName: make(map[string]string), byKey: make(map[string]string)}
	err = eachPair(idsPath, func(id, author string) {
		if aff, ok := byID[id]; ok {
			idx.byName[author] = aff
			idx.byKey[name.Normalize(author)] = aff
		}
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// eachPair calls fn for every line that splits into an id and a value.
func eachPair(path string, fn func(id, value string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := fieldSep.Split(strings.TrimRight(scanner.Text(), "\r"), 2)
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		fn(parts[0], parts[1])
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// Find returns the affiliation of author. Names that differ only in
// accents, entities, case or punctuation match through their normalized key.
func (i *Index) Find(author string) (string, bool) {
	aff, ok := i.byName[author]
	if !ok {
		aff, ok = i.byKey[name.Normalize(author)]
	}
	return aff, ok && aff != ""
}

// Len returns the number of authors with an affiliation.
func (i *Index) Len() int {
	return len(i.byName)
}
