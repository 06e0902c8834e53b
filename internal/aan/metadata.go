// Package aan parses the ACL Anthology Network release metadata.
package aan

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// fieldPattern matches lines like: author = {Smith, John; Doe, Jane}
var fieldPattern = regexp.MustCompile(`^\s*(\w+)\s*=\s*\{(.*?)\}`)

// Paper is one entry of acl-metadata.txt.
type Paper struct {
	ID      string   `json:"id"`
	Authors []string `json:"authors"`
	Title   string   `json:"title"`
	Venue   string   `json:"venue"`
	Year    int      `json:"year"`
}

// ParseMetadata reads blank-line separated metadata records. Records
// repeating an earlier id are dropped.
func ParseMetadata(r io.Reader) ([]Paper, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	if !utf8.Valid(data) {
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding latin-1 metadata: %w", err)
		}
	}

	var papers []Paper
	seen := make(map[string]bool)
	var cur *Paper
	lineNum := 0

	flush := func() error {
		if cur == nil {
			return nil
		}
		p := *cur
		cur = nil
		if p.ID == "" {
			return fmt.Errorf("record ending on line %d has no id", lineNum)
		}
		if seen[p.ID] {
			return nil
		}
		seen[p.ID] = true
		papers = append(papers, p)
		return nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		m := fieldPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: unrecognised metadata line %q", lineNum, line)
		}
		if cur == nil {
			cur = &Paper{}
		}
		value := m[2]
		switch m[1] {
		case "id":
			cur.ID = value
		case "author":
			cur.Authors = SplitAuthors(value)
		case "title":
			cur.Title = value
		case "venue":
			cur.Venue = value
		case "year":
			y, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid year %q", lineNum, value)
			}
			cur.Year = y
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return papers, nil
}

// LoadMetadata parses the metadata file at path.
func LoadMetadata(path string) ([]Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata: %w", err)
	}
	defer f.Close()
	return ParseMetadata(f)
}

// SplitAuthors splits a semicolon separated author field.
func SplitAuthors(field string) []string {
	var out []string
	for _, a := range strings.Split(field, ";") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Authors returns the distinct authors of papers published after the given
// year, in order of first appearance.
func Authors(papers []Paper, after int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range papers {
		if p.Year <= after {
			continue
		}
		for _, a := range p.Authors {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}
