package pipeline

import (
	"fmt"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/initials"
	"github.com/aanlab/aang/internal/name"
	"github.com/aanlab/aang/internal/namestat"
)

// InitialsFallback matches initials-only authors against known full names
// sharing their surname.
type InitialsFallback struct {
	Index *initials.Index
}

func (f InitialsFallback) Resolve(author string) (gender.Result, bool) {
	if !name.IsInitials(author, ",") {
		return gender.Result{}, false
	}
	m, ok := f.Index.BestMatch(author)
	if !ok {
		return gender.Result{}, false
	}
	return gender.Result{
		Name:   author,
		Gender: m.Gender,
		Source: gender.SourceInitials,
		Detail: fmt.Sprintf("%s (%s)", m.FullName, m.Strength),
	}, true
}

// CorpusFallback uses first-name counts from the known author lists.
type CorpusFallback struct {
	Stats *namestat.CorpusStats
}

func (f CorpusFallback) Resolve(author string) (gender.Result, bool) {
	g, conflict := f.Stats.Resolve(author)
	if conflict || !g.Known() {
		return gender.Result{}, false
	}
	return gender.Result{Name: author, Gender: g, Source: gender.SourceCorpusStats}, true
}
