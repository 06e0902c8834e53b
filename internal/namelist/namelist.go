// Package namelist loads the static first-name and author-name tables that
// feed the gender cascade.
package namelist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Set is a set of names.
type Set map[string]struct{}

// NewSet returns a set containing names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a trimmed, non-empty name.
func (s Set) Add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds every name of other to s.
func (s Set) Union(other Set) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Difference removes every name of other from s.
func (s Set) Difference(other Set) {
	for n := range other {
		delete(s, n)
	}
}

// ReadSet reads a line-delimited name file.
func ReadSet(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening name list: %w", err)
	}
	defer f.Close()

	s := make(Set)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading name list %s: %w", path, err)
	}
	return s, nil
}

// ReadSets reads and merges several name files.
func ReadSets(paths ...string) (Set, error) {
	all := make(Set)
	for _, p := range paths {
		s, err := ReadSet(p)
		if err != nil {
			return nil, err
		}
		all.Union(s)
	}
	return all, nil
}

// WriteLines writes names, one per line, replacing the file.
func WriteLines(path string, names []string) error {
	data := strings.Join(names, "\n")
	if len(names) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
