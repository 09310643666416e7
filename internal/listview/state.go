package listview

import "maps"

// Phase is where a record sits in the mutation state machine.
type Phase int

const (
	Idle Phase = iota
	Validating
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	default:
		return "idle"
	}
}

// NewRecordKey is the phase key of a create in progress.
const NewRecordKey = "\x00new"

// State is everything a screen holds. Maps and slices are never mutated in
// place, so a copied State is a safe snapshot.
type State[T any] struct {
	Items    []T
	Filter   FilterState
	Sort     SortState
	Page     int
	PageSize int

	Loading  bool
	Loaded   bool
	FetchErr error

	FieldErrors map[string]string

	phases map[string]Phase
	// toggled holds ids whose entry shows an optimistic status toggle.
	toggled map[string]bool
	seq     uint64
}

// Phase reports the mutation phase of the record with id.
func (s State[T]) Phase(id string) Phase {
	return s.phases[id]
}

// Creating reports whether a create is being validated or submitted.
func (s State[T]) Creating() bool {
	return s.phases[NewRecordKey] != Idle
}

func (s State[T]) withPhase(key string, p Phase) State[T] {
	next := maps.Clone(s.phases)
	if next == nil {
		next = map[string]Phase{}
	}
	if p == Idle {
		delete(next, key)
	} else {
		next[key] = p
	}
	s.phases = next
	return s
}

func (s State[T]) withToggled(id string, on bool) State[T] {
	if s.toggled[id] == on {
		return s
	}
	next := maps.Clone(s.toggled)
	if next == nil {
		next = map[string]bool{}
	}
	if on {
		next[id] = true
	} else {
		delete(next, id)
	}
	s.toggled = next
	return s
}

// View is the derived projection handed to renderers.
type View[T any] struct {
	State State[T]
	Rows  []T
	Page  Page[T]
}

// Derive computes the filtered, sorted view and the current page of s.
func Derive[T any](s State[T], cfg *Config[T]) View[T] {
	rows := Sort(Filter(s.Items, cfg, s.Filter), cfg.SortKeys, s.Sort)
	return View[T]{
		State: s,
		Rows:  rows,
		Page:  Paginate(rows, s.PageSize, s.Page),
	}
}
