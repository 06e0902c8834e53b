package namelist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Default manual overrides for first names the statistical detector gets
// wrong or does not know.
var (
	ManualFemale = []string{
		"Marion", "Stéphane", "Whitney", "Amy", "María", "Clara", "Elisa",
		"Maria", "Diana", "Carmen", "Ramona", "Anne", "Octavia-Maria", "Kelly",
		"Darnes",
	}
	ManualMale = []string{
		"Will", "Sandeep", "Ben", "Jesus", "José", "Jose", "Deepak", "Javier",
		"Ritwik", "Gaël", "Kartik", "FranÃ§ois", "Adrian", "Adri?", "Michal",
		"Dan", "Florin", "Mihai", "Christian", "Nate", "João", "Jan", "Ilia",
		"Vishal", "Jesús", "Ronan", "Karel", "Lluís",
	}
)

// Gendered holds a female and a male name set.
type Gendered struct {
	Female Set
	Male   Set
}

// Manual returns the built-in manual lists.
func Manual() Gendered {
	return Gendered{Female: NewSet(ManualFemale...), Male: NewSet(ManualMale...)}
}

// Extend adds names from optional extra files to the lists.
func (g Gendered) Extend(femalePaths, malePaths []string) error {
	f, err := ReadSets(femalePaths...)
	if err != nil {
		return err
	}
	m, err := ReadSets(malePaths...)
	if err != nil {
		return err
	}
	g.Female.Union(f)
	g.Male.Union(m)
	return nil
}

// LoadIndian reads the Indian first-name lists. Names listed as unisex are
// removed from both gendered sets.
func LoadIndian(malePath, femalePath, unisexPath string) (Gendered, error) {
	male, err := ReadSet(malePath)
	if err != nil {
		return Gendered{}, err
	}
	female, err := ReadSet(femalePath)
	if err != nil {
		return Gendered{}, err
	}
	unisex, err := ReadSet(unisexPath)
	if err != nil {
		return Gendered{}, err
	}
	male.Difference(unisex)
	female.Difference(unisex)
	return Gendered{Female: female, Male: male}, nil
}

// LoadCensus reads a US census first-name file with lines of the form
// "FO <last> <first>" or "MO <last> <first>". Other tags and malformed lines
// are skipped.
func LoadCensus(path string) (Gendered, error) {
	f, err := os.Open(path)
	if err != nil {
		return Gendered{}, fmt.Errorf("opening census list: %w", err)
	}
	defer f.Close()

	g := Gendered{Female: make(Set), Male: make(Set)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		switch fields[0] {
		case "FO":
			g.Female.Add(fields[2])
		case "MO":
			g.Male.Add(fields[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return Gendered{}, fmt.Errorf("reading census list: %w", err)
	}
	return g, nil
}

// LoadKnown reads the full-name author lists produced by earlier
// classification rounds.
func LoadKnown(femalePaths, malePaths []string) (Gendered, error) {
	female, err := ReadSets(femalePaths...)
	if err != nil {
		return Gendered{}, err
	}
	male, err := ReadSets(malePaths...)
	if err != nil {
		return Gendered{}, err
	}
	return Gendered{Female: female, Male: male}, nil
}
