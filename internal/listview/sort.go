package listview

import (
	"slices"
	"strings"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts asc/desc in any case; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Descending
	}
	return Ascending
}

// SortState holds at most one active sort key.
type SortState struct {
	Key       string
	Direction Direction
}

// Toggle selects key: the active key flips direction, a new key starts
// ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// SortKey extracts the comparable value of one column.
type SortKey[T any] func(T) Value

// Sort returns a stably sorted copy of items. An unknown key keeps the input
// order.
func Sort[T any](items []T, keys map[string]SortKey[T], s SortState) []T {
	out := slices.Clone(items)
	key, ok := keys[s.Key]
	if !ok || key == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := Compare(key(a), key(b))
		if s.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}
