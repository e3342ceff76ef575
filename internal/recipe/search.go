package recipe

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// SortBy selects the order of search results.
type SortBy string

const (
	SortNewest SortBy = "newest"
	SortOldest SortBy = "oldest"
	SortLikes  SortBy = "likes"
)

// ParseSortBy maps a flag value to a SortBy. Unknown values sort newest
// first.
func ParseSortBy(s string) SortBy {
	switch SortBy(s) {
	case SortOldest, SortLikes:
		return SortBy(s)
	}
	return SortNewest
}

// Filter narrows a recipe list. Empty fields match everything.
type Filter struct {
	Keyword string // title and description
	Author  string
	Store   string
	Tag     string
	Fuzzy   bool // keyword matches as an in-order subsequence
	Sort    SortBy
}

// NormalizeText folds text for matching: characters are folded to their
// canonical width (full-width ASCII becomes half-width), katakana becomes
// hiragana, and case is folded.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = width.Fold.String(s)
	s = strings.Map(func(r rune) rune {
		if r >= 0x30A1 && r <= 0x30F6 {
			return r - 0x60
		}
		return r
	}, s)
	return cases.Fold().String(s)
}

// Match reports whether r passes every set criterion of f.
func (f Filter) Match(r Recipe) bool {
	if kw := NormalizeText(f.Keyword); kw != "" {
		content := NormalizeText(r.Title + " " + r.Description)
		if f.Fuzzy {
			if !fuzzy.MatchNormalizedFold(kw, content) {
				return false
			}
		} else if !strings.Contains(content, kw) {
			return false
		}
	}
	if a := NormalizeText(f.Author); a != "" && !strings.Contains(NormalizeText(r.CreatedBy.Name), a) {
		return false
	}
	if s := NormalizeText(f.Store); s != "" && !strings.Contains(NormalizeText(r.CreatedBy.Store), s) {
		return false
	}
	if tag := NormalizeText(f.Tag); tag != "" {
		tags := make([]string, len(r.Tags))
		for i, t := range r.Tags {
			tags[i] = NormalizeText(t)
		}
		if !strings.Contains(strings.Join(tags, " "), tag) {
			return false
		}
	}
	return true
}

// Search filters recipes with f and sorts the result. The input is not
// modified. Ties keep their input order.
func Search(recipes []Recipe, f Filter) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.Match(r) {
			out = append(out, r)
		}
	}

	switch f.Sort {
	case SortOldest:
		slices.SortStableFunc(out, func(a, b Recipe) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case SortLikes:
		slices.SortStableFunc(out, func(a, b Recipe) int { return cmp.Compare(len(b.Likes), len(a.Likes)) })
	default:
		slices.SortStableFunc(out, func(a, b Recipe) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}
	return out
}

// AllTags returns every distinct tag in use, sorted by normalized form.
func AllTags(recipes []Recipe) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, r := range recipes {
		for _, t := range r.Tags {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	slices.SortFunc(tags, func(a, b string) int {
		return cmp.Compare(NormalizeText(a), NormalizeText(b))
	})
	return tags
}
