package config

import "path/filepath"

// Layout locates the files of an AAN data directory.
type Layout struct {
	Root string
}

const (
	SaveDir    = "save"
	ReleaseDir = "release/2014"
	DBFile     = "genders.db"
)

func (l Layout) save(name string) string {
	return filepath.Join(l.Root, SaveDir, name)
}

func (l Layout) release(name string) string {
	return filepath.Join(l.Root, ReleaseDir, name)
}

// Metadata returns the path to acl-metadata.txt.
func (l Layout) Metadata() string { return l.release("acl-metadata.txt") }

// AuthorIDs returns the path to author_ids.txt.
func (l Layout) AuthorIDs() string { return l.release("author_ids.txt") }

// AffiliationPairs returns the path to author_affiliation_pairs.txt.
func (l Layout) AffiliationPairs() string { return l.release("author_affiliation_pairs.txt") }

// IndianLists returns the male, female and unisex Indian name lists.
func (l Layout) IndianLists() (male, female, unisex string) {
	return l.save("indianmale.txt"), l.save("indianfemale.txt"), l.save("indianunisex.txt")
}

// Census returns the path to the US census first-name list.
func (l Layout) Census() string { return l.save("US_CENSUS_FOMO") }

// NamsorResults returns the path to the cached Namsor answers.
func (l Layout) NamsorResults() string { return l.save("namresults.txt") }

// KnownFemale returns the default lists of authors known to be female.
func (l Layout) KnownFemale() []string {
	return []string{l.save("acl-female.txt"), l.save("machine_females.txt"), l.save("machine_femalesNAM.txt")}
}

// KnownMale returns the default lists of authors known to be male.
func (l Layout) KnownMale() []string {
	return []string{l.save("acl-male.txt"), l.save("machine_males.txt"), l.save("machine_malesNAM.txt")}
}

// Unknowns returns the path where unclassified authors are written.
func (l Layout) Unknowns() string { return l.save("unknown.txt") }

// Database returns the default SQLite database path.
func (l Layout) Database() string { return l.save(DBFile) }

// DatabaseDSN returns the configured database, falling back to the SQLite
// file under the data directory.
func (c *GlobalConfig) DatabaseDSN() string {
	if c.Database != "" {
		return c.Database
	}
	return Layout{Root: c.DataDir}.Database()
}

// KnownLists returns the configured known-author lists, or the defaults of
// the data directory.
func (c *GlobalConfig) KnownLists() (female, male []string) {
	l := Layout{Root: c.DataDir}
	female, male = c.KnownFemale, c.KnownMale
	if len(female) == 0 {
		female = l.KnownFemale()
	}
	if len(male) == 0 {
		male = l.KnownMale()
	}
	return female, male
}
