// Package namestat holds the count-based first-name classifiers: a detector
// built from national birth-name statistics, and a corpus classifier built
// from authors whose gender is already known.
package namestat

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aanlab/aang/internal/gender"
)

// Detector defaults.
const (
	DefaultThreshold = 0.95
	DefaultMinCount  = 5
)

// Counts holds the number of male and female bearers of a name.
type Counts struct {
	Male   int
	Female int
}

// Detector classifies first names from aggregated birth-name counts.
type Detector struct {
	counts    map[string]Counts
	Threshold float64 // minimum share of the dominant sex
	MinCount  int     // minimum count of the dominant sex
}

// NewDetector returns an empty detector with default thresholds.
func NewDetector() *Detector {
	return &Detector{
		counts:    make(map[string]Counts),
		Threshold: DefaultThreshold,
		MinCount:  DefaultMinCount,
	}
}

// Len returns the number of distinct names known to the detector.
func (d *Detector) Len() int {
	return len(d.counts)
}

// Add records count bearers of name with the given sex ("M" or "F").
func (d *Detector) Add(name, sex string, count int) error {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return errors.New("empty name")
	}
	c := d.counts[key]
	switch strings.ToUpper(strings.TrimSpace(sex)) {
	case "M":
		c.Male += count
	case "F":
		c.Female += count
	default:
		return fmt.Errorf("invalid sex %q for %s", sex, name)
	}
	d.counts[key] = c
	return nil
}

// Counts returns the aggregated counts for name.
func (d *Detector) Counts(name string) (Counts, bool) {
	c, ok := d.counts[strings.ToUpper(strings.TrimSpace(name))]
	return c, ok
}

// Detect returns Male or Female when the name is used overwhelmingly for
// one sex, Unknown otherwise.
func (d *Detector) Detect(first string) gender.Gender {
	c, ok := d.Counts(first)
	if !ok {
		return gender.Unknown
	}
	total := c.Male + c.Female
	if total == 0 {
		return gender.Unknown
	}
	switch {
	case c.Male >= d.MinCount && float64(c.Male)/float64(total) >= d.Threshold:
		return gender.Male
	case c.Female >= d.MinCount && float64(c.Female)/float64(total) >= d.Threshold:
		return gender.Female
	}
	return gender.Unknown
}

// ReadCSV adds "name,sex,count" rows from r.
func (d *Detector) ReadCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("parsing line %d: %w", line, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return fmt.Errorf("parsing count on line %d: %w", line, err)
		}
		if err := d.Add(rec[0], rec[1], n); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

// Load reads name counts from a CSV/TXT file or from a zip archive of such
// files.
func (d *Detector) Load(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return d.loadZip(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening name counts: %w", err)
	}
	defer f.Close()
	if err := d.ReadCSV(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (d *Detector) loadZip(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening name archive: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(zf.Name))
		if ext != ".txt" && ext != ".csv" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", zf.Name, err)
		}
		err = d.ReadCSV(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", zf.Name, err)
		}
	}
	return nil
}
