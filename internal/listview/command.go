package listview

import (
	"maps"
	"slices"
	"strings"
)

// Command is an operator intent or a request outcome, reduced by Reduce.
type Command interface {
	command()
}

type (
	SetSearch    struct{ Term string }
	SetCategory  struct{ Name, Value string }
	SetFlag      struct {
		Name string
		On   bool
	}
	// SetRemote changes a server-side filter and triggers a refetch.
	SetRemote    struct{ Name, Value string }
	ClearFilters struct{}
	SortBy       struct{ Key string }
	GoToPage     struct{ Page int }
	NextPage     struct{}
	PrevPage     struct{}
	SetPageSize  struct{ Size int }
)

func (SetSearch) command()    {}
func (SetCategory) command()  {}
func (SetFlag) command()      {}
func (SetRemote) command()    {}
func (ClearFilters) command() {}
func (SortBy) command()       {}
func (GoToPage) command()     {}
func (NextPage) command()     {}
func (PrevPage) command()     {}
func (SetPageSize) command()  {}

// Request outcomes. Only the controller produces these.
type (
	fetchStarted        struct{}
	fetchSucceeded[T any] struct{ items []T }
	fetchFailed         struct{ err error }
	phaseChanged        struct {
		key   string
		phase Phase
	}
	validationFailed struct {
		key    string
		fields map[string]string
	}
	mutationFailed struct {
		key    string
		fields map[string]string
	}
	recordSaved[T any] struct {
		key    string
		rec    T
		insert bool
	}
	toggleApplied[T any] struct{ rec T }
	toggleReverted      struct{ id string }
	recordRemoved       struct{ key, id string }
)

func (fetchStarted) command()      {}
func (fetchSucceeded[T]) command() {}
func (fetchFailed) command()       {}
func (phaseChanged) command()      {}
func (validationFailed) command()  {}
func (mutationFailed) command()    {}
func (recordSaved[T]) command()    {}
func (toggleApplied[T]) command() {}
func (toggleReverted) command()    {}
func (recordRemoved) command()     {}

// Effect is the side effect a reduction asks the controller to perform.
type Effect int

const (
	NoEffect Effect = iota
	RefetchEffect
)

// Reduce is the single state-update function of a list view. It is pure:
// s is not modified and the result shares no mutable data with it.
func Reduce[T any](s State[T], cfg *Config[T], cmd Command) (State[T], Effect) {
	switch c := cmd.(type) {
	case SetSearch:
		s.Filter = s.Filter.clone()
		s.Filter.Search = c.Term
		s.Page = 1
	case SetCategory:
		s.Filter = s.Filter.clone()
		if s.Filter.Categories == nil {
			s.Filter.Categories = map[string]string{}
		}
		s.Filter.Categories[c.Name] = c.Value
		s.Page = 1
	case SetFlag:
		s.Filter = s.Filter.clone()
		if s.Filter.Flags == nil {
			s.Filter.Flags = map[string]bool{}
		}
		s.Filter.Flags[c.Name] = c.On
		s.Page = 1
	case SetRemote:
		prev := s.Filter.Remote[c.Name]
		s.Filter = s.Filter.clone()
		if s.Filter.Remote == nil {
			s.Filter.Remote = map[string]string{}
		}
		value := strings.TrimSpace(c.Value)
		if value == "" || strings.EqualFold(value, All) {
			delete(s.Filter.Remote, c.Name)
		} else {
			s.Filter.Remote[c.Name] = value
		}
		s.Page = 1
		if s.Filter.Remote[c.Name] != prev {
			return s, RefetchEffect
		}
	case ClearFilters:
		hadRemote := len(s.Filter.Remote) > 0
		s.Filter = FilterState{}
		s.Page = 1
		if hadRemote {
			return s, RefetchEffect
		}
	case SortBy:
		if _, ok := cfg.SortKeys[c.Key]; ok {
			s.Sort = s.Sort.Toggle(c.Key)
		}
	case GoToPage:
		s.Page = ClampPage(c.Page, viewLen(s, cfg), s.PageSize)
	case NextPage:
		s.Page = ClampPage(s.Page+1, viewLen(s, cfg), s.PageSize)
	case PrevPage:
		s.Page = ClampPage(s.Page-1, viewLen(s, cfg), s.PageSize)
	case SetPageSize:
		if c.Size > 0 {
			s.PageSize = c.Size
			s.Page = 1
		}

	case fetchStarted:
		s.seq++
		s.Loading = true
	case fetchSucceeded[T]:
		s.Items = slices.Clone(c.items)
		if s.Items == nil {
			s.Items = []T{}
		}
		s.Loading = false
		s.Loaded = true
		s.FetchErr = nil
		s = reapplyToggles(s, cfg)
		s.Page = ClampPage(s.Page, viewLen(s, cfg), s.PageSize)
	case fetchFailed:
		s.Loading = false
		s.FetchErr = c.err
	case phaseChanged:
		s = s.withPhase(c.key, c.phase)
		if c.phase == Submitting {
			s.FieldErrors = nil
		}
	case validationFailed:
		s = s.withPhase(c.key, Idle)
		s.FieldErrors = maps.Clone(c.fields)
	case mutationFailed:
		s = s.withPhase(c.key, Idle)
		s.FieldErrors = maps.Clone(c.fields)
	case recordSaved[T]:
		s = s.withPhase(c.key, Idle)
		s = s.withToggled(c.key, false)
		s.FieldErrors = nil
		s.Items = upsert(s.Items, cfg, c.rec, c.insert && cfg.Prepend)
		s = invalidateFetch(s)
		s.Page = ClampPage(s.Page, viewLen(s, cfg), s.PageSize)
	case toggleApplied[T]:
		id := cfg.ID(c.rec)
		if i := indexOf(s.Items, cfg, id); i >= 0 {
			s.Items = slices.Clone(s.Items)
			s.Items[i] = c.rec
			s = s.withToggled(id, true)
		}
	case toggleReverted:
		if !s.toggled[c.id] {
			break
		}
		s = s.withToggled(c.id, false)
		i := indexOf(s.Items, cfg, c.id)
		if i < 0 || cfg.Toggle == nil {
			break
		}
		if prev, err := cfg.Toggle(s.Items[i]); err == nil {
			s.Items = slices.Clone(s.Items)
			s.Items[i] = prev
		}
	case recordRemoved:
		s = s.withPhase(c.key, Idle)
		s = s.withToggled(c.id, false)
		if i := indexOf(s.Items, cfg, c.id); i >= 0 {
			s.Items = slices.Delete(slices.Clone(s.Items), i, i+1)
		}
		s = invalidateFetch(s)
		s.Page = ClampPage(s.Page, viewLen(s, cfg), s.PageSize)
	}
	return s, NoEffect
}

// reapplyToggles lays toggles still in flight over freshly fetched records
// so the row keeps showing the pending status. A record that can no longer
// be toggled, or is gone, keeps the server's copy.
func reapplyToggles[T any](s State[T], cfg *Config[T]) State[T] {
	for id := range s.toggled {
		i := indexOf(s.Items, cfg, id)
		if i < 0 || cfg.Toggle == nil {
			s = s.withToggled(id, false)
			continue
		}
		next, err := cfg.Toggle(s.Items[i])
		if err != nil {
			s = s.withToggled(id, false)
			continue
		}
		s.Items[i] = next
	}
	return s
}

// invalidateFetch makes any in-flight fetch stale so it cannot overwrite a
// mutation it may not have observed.
func invalidateFetch[T any](s State[T]) State[T] {
	s.seq++
	s.Loading = false
	return s
}

func viewLen[T any](s State[T], cfg *Config[T]) int {
	return len(Filter(s.Items, cfg, s.Filter))
}

func indexOf[T any](items []T, cfg *Config[T], id string) int {
	return slices.IndexFunc(items, func(it T) bool { return cfg.ID(it) == id })
}

func upsert[T any](items []T, cfg *Config[T], rec T, prepend bool) []T {
	if i := indexOf(items, cfg, cfg.ID(rec)); i >= 0 {
		out := slices.Clone(items)
		out[i] = rec
		return out
	}
	if prepend {
		out := make([]T, 0, len(items)+1)
		out = append(out, rec)
		return append(out, items...)
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, rec)
}
