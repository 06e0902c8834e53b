// Package namsor reads and extends the cache of Namsor onomastics results and
// provides a client for the Namsor gender API.
package namsor

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/name"
)

// DefaultMinScale drops cached results Namsor itself was unsure about.
const DefaultMinScale = 0.4

// linePattern matches cache lines of the form (u'Smith, John', 'male', -0.93).
var linePattern = regexp.MustCompile(`^\(u.(.+)., '(.*)', (.*)\)`)

// Entry is one cached Namsor answer.
type Entry struct {
	Name   string
	Gender string // "male", "female" or "unknown" as returned by Namsor
	Scale  float64
}

// Cache maps author names to confident Namsor answers.
type Cache struct {
	byName map[string]gender.Gender
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{byName: make(map[string]gender.Gender)}
}

// Len returns the number of confident entries.
func (c *Cache) Len() int {
	return len(c.byName)
}

// Add records e if it is confident enough.
func (c *Cache) Add(e Entry, minScale float64) {
	if math.Abs(e.Scale) < minScale {
		return
	}
	switch e.Gender {
	case "female":
		c.byName[e.Name] = gender.Female
	case "male":
		c.byName[e.Name] = gender.Male
	}
}

// Lookup returns the cached gender for an author name. The raw trimmed name
// is tried first, then its HTML-unescaped form.
func (c *Cache) Lookup(author string) gender.Gender {
	author = strings.TrimSpace(author)
	if g, ok := c.byName[author]; ok {
		return g
	}
	if g, ok := c.byName[name.Unescape(author)]; ok {
		return g
	}
	return gender.Unknown
}

// ParseLine parses one cache line.
func ParseLine(line string) (Entry, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, fmt.Errorf("unrecognised cache line %q", line)
	}
	scale, err := strconv.ParseFloat(strings.TrimSpace(m[3]), 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing scale: %w", err)
	}
	return Entry{
		Name:   name.Unescape(m[1]),
		Gender: strings.TrimSpace(m[2]),
		Scale:  scale,
	}, nil
}

// FormatLine renders e in the cache file format.
func FormatLine(e Entry) string {
	return fmt.Sprintf("(u'%s', '%s', %s)", e.Name, e.Gender, strconv.FormatFloat(e.Scale, 'f', -1, 64))
}

// LoadCache reads a cache file, keeping entries with |scale| >= minScale.
func LoadCache(path string, minScale float64) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening Namsor cache: %w", err)
	}
	defer f.Close()

	c := NewCache()
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		c.Add(e, minScale)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading Namsor cache: %w", err)
	}
	return c, nil
}

// AppendCache appends entries to the cache file, creating it if needed.
func AppendCache(path string, entries []Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening Namsor cache for append: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		if _, err := w.WriteString(FormatLine(e) + "\n"); err != nil {
			return fmt.Errorf("writing cache entry: %w", err)
		}
	}
	return w.Flush()
}
