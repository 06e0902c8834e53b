// Package report summarises female participation in the corpus by year.
package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aanlab/aang/internal/aan"
	"github.com/aanlab/aang/internal/gender"
)

// Year holds the authorship counts of one publication year.
type Year struct {
	Year        int     `json:"year"`
	Papers      int     `json:"papers"`
	Female      int     `json:"female"`
	Male        int     `json:"male"`
	Unknown     int     `json:"unknown"`
	FemaleShare float64 `json:"female_share"`
	FemaleFirst int     `json:"female_first_author"`
}

// Report is the per-year breakdown plus summary statistics over the
// yearly female share.
type Report struct {
	Years     []Year  `json:"years"`
	Total     Year    `json:"total"`
	MeanShare float64 `json:"mean_female_share"`
	StdShare  float64 `json:"std_female_share"`
}

// Build counts authorships of papers published after the given year.
// Authors missing from genders count as unknown.
func Build(papers []aan.Paper, genders map[string]gender.Gender, after int) Report {
	byYear := make(map[int]*Year)
	var total Year
	for _, p := range papers {
		if p.Year <= after {
			continue
		}
		y, ok := byYear[p.Year]
		if !ok {
			y = &Year{Year: p.Year}
			byYear[p.Year] = y
		}
		y.Papers++
		total.Papers++
		for i, a := range p.Authors {
			g, ok := genders[a]
			if !ok {
				g = gender.Unknown
			}
			switch g {
			case gender.Female:
				y.Female++
				total.Female++
				if i == 0 {
					y.FemaleFirst++
					total.FemaleFirst++
				}
			case gender.Male:
				y.Male++
				total.Male++
			default:
				y.Unknown++
				total.Unknown++
			}
		}
	}

	r := Report{Years: make([]Year, 0, len(byYear))}
	var shares []float64
	for _, y := range byYear {
		y.FemaleShare = share(y.Female, y.Male)
		r.Years = append(r.Years, *y)
		if y.Female+y.Male > 0 {
			shares = append(shares, y.FemaleShare)
		}
	}
	sort.Slice(r.Years, func(i, j int) bool { return r.Years[i].Year < r.Years[j].Year })

	total.FemaleShare = share(total.Female, total.Male)
	r.Total = total
	switch len(shares) {
	case 0:
	case 1:
		r.MeanShare = shares[0]
	default:
		r.MeanShare, r.StdShare = stat.MeanStdDev(shares, nil)
	}
	return r
}

func share(female, male int) float64 {
	if female+male == 0 {
		return 0
	}
	return float64(female) / float64(female+male)
}
