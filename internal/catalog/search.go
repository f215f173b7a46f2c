package catalog

import "strings"

// Filter applies all non-empty criteria and returns matching entries.
type Filter struct {
	Tag       string
	Search    string // matches title or any tag
	MinRating float64
}

// Apply returns the subset of entries matching all non-empty filter fields.
func (f Filter) Apply(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if f.Tag != "" && !hasTag(e, f.Tag) {
			continue
		}
		if f.MinRating > 0 && e.Rating < f.MinRating {
			continue
		}
		if f.Search != "" && !matchesSearch(e, f.Search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ByID returns the first entry with the given ID, or nil.
func ByID(entries []Entry, id string) *Entry {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

func hasTag(e Entry, tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func matchesSearch(e Entry, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(e.Title), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
