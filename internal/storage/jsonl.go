package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aanlab/aang/internal/gender"
)

// Validation errors for imported records.
var (
	ErrMissingName   = errors.New("record has no name")
	ErrMissingGender = errors.New("record has no gender")
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all records from a JSONL file.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file means no records
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var recs []Record
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		rec, err := decodeRecord(line)
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return recs, nil
}

// jsonlRecord is the wire form of a Record. Gender is a pointer so a missing
// label is not read as the zero value.
type jsonlRecord struct {
	Name         string         `json:"name"`
	Gender       *gender.Gender `json:"gender"`
	Source       gender.Source  `json:"source"`
	Detail       string         `json:"detail,omitempty"`
	ClassifiedAt time.Time      `json:"classified_at"`
}

// decodeRecord parses one JSONL line, requiring a name and a gender label.
func decodeRecord(line []byte) (Record, error) {
	var w jsonlRecord
	if err := json.Unmarshal(line, &w); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(w.Name) == "" {
		return Record{}, ErrMissingName
	}
	if w.Gender == nil {
		return Record{}, fmt.Errorf("%w for %q", ErrMissingGender, w.Name)
	}
	return Record{
		Name:         w.Name,
		Gender:       *w.Gender,
		Source:       w.Source,
		Detail:       w.Detail,
		ClassifiedAt: w.ClassifiedAt,
	}, nil
}

// Append adds a record to the end of a JSONL file.
func Append(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening records file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// WriteAll writes all records to a JSONL file, replacing existing content.
func WriteAll(path string, recs []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return w.Flush()
}
