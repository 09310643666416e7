package listview

import (
	"maps"
	"strings"

	"golang.org/x/text/cases"
)

// All is the categorical sentinel meaning "no constraint". The empty string
// means the same.
const All = "all"

// FilterState is the operator's current filter input. It lives only as long
// as the screen.
type FilterState struct {
	Search     string
	Categories map[string]string
	Flags      map[string]bool
	// Remote holds server-side parameters (date, status) passed to the fetcher.
	Remote map[string]string
}

func (f FilterState) clone() FilterState {
	return FilterState{
		Search:     f.Search,
		Categories: maps.Clone(f.Categories),
		Flags:      maps.Clone(f.Flags),
		Remote:     maps.Clone(f.Remote),
	}
}

// IsZero reports whether no local or remote filter is active.
func (f FilterState) IsZero() bool {
	if strings.TrimSpace(f.Search) != "" {
		return false
	}
	for _, v := range f.Categories {
		if constrains(v) {
			return false
		}
	}
	for _, on := range f.Flags {
		if on {
			return false
		}
	}
	for _, v := range f.Remote {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func constrains(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

// Filter returns the records of items that pass every active filter, in
// their original relative order. Category and flag names without a
// configured accessor are ignored.
func Filter[T any](items []T, cfg *Config[T], f FilterState) []T {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(f.Search))

	var cats []categoryFilter[T]
	for name, want := range f.Categories {
		get, ok := cfg.Categories[name]
		if !ok || !constrains(want) {
			continue
		}
		cats = append(cats, categoryFilter[T]{get: get, want: strings.TrimSpace(want)})
	}
	var flags []func(T) bool
	for name, on := range f.Flags {
		pred, ok := cfg.Flags[name]
		if ok && on {
			flags = append(flags, pred)
		}
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if needle != "" && !matchesSearch(it, cfg.SearchFields, needle, fold) {
			continue
		}
		if !matchesCategories(it, cats) {
			continue
		}
		if !matchesFlags(it, flags) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesSearch[T any](it T, fields []func(T) string, needle string, fold cases.Caser) bool {
	for _, field := range fields {
		if strings.Contains(fold.String(field(it)), needle) {
			return true
		}
	}
	return false
}

type categoryFilter[T any] struct {
	get  func(T) string
	want string
}

func matchesCategories[T any](it T, cats []categoryFilter[T]) bool {
	for _, c := range cats {
		if c.get(it) != c.want {
			return false
		}
	}
	return true
}

func matchesFlags[T any](it T, flags []func(T) bool) bool {
	for _, pred := range flags {
		if !pred(it) {
			return false
		}
	}
	return true
}
