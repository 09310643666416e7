package listview

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
)

type member struct {
	ID     string
	Name   string
	Phone  string
	Role   string
	Active bool
	Price  float64
	Joined time.Time
	Stock  int
}

func memberConfig(src Source[member]) Config[member] {
	return Config[member]{
		Name:   "staff member",
		Plural: "staff",
		ID:     func(m member) string { return m.ID },
		Label:  func(m member) string { return m.Name },
		SearchFields: []func(member) string{
			func(m member) string { return m.Name },
			func(m member) string { return m.Phone },
		},
		Categories: map[string]func(member) string{
			"role": func(m member) string { return m.Role },
			"status": func(m member) string {
				if m.Active {
					return "active"
				}
				return "inactive"
			},
		},
		Flags: map[string]func(member) bool{
			"low_stock": func(m member) bool { return m.Stock < 5 },
		},
		SortKeys: map[string]SortKey[member]{
			"name":   func(m member) Value { return String(m.Name) },
			"price":  func(m member) Value { return Number(m.Price) },
			"joined": func(m member) Value { return Time(m.Joined) },
		},
		Source: src,
		Validate: func(m member) error {
			if m.Name == "" {
				return apierr.Field("name", "is required")
			}
			return nil
		},
		Toggle: func(m member) (member, error) {
			m.Active = !m.Active
			return m, nil
		},
	}
}

func numbered(n int) []member {
	out := make([]member, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, member{ID: fmt.Sprint(i), Name: fmt.Sprintf("Member %02d", i)})
	}
	return out
}

// fakeSource is an in-memory REST boundary. Hooks override single calls.
type fakeSource struct {
	mu     sync.Mutex
	items  []member
	nextID int
	calls  map[string]int

	listFn   func(ctx context.Context, remote map[string]string) ([]member, error)
	createFn func(ctx context.Context, rec member) (member, error)
	updateFn func(ctx context.Context, rec member) (member, error)
	deleteFn func(ctx context.Context, id string) error
	toggleFn func(ctx context.Context, rec member) (member, error)
}

func newFakeSource(items ...member) *fakeSource {
	return &fakeSource{items: slices.Clone(items), nextID: 100, calls: map[string]int{}}
}

func (f *fakeSource) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeSource) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeSource) List(ctx context.Context, remote map[string]string) ([]member, error) {
	f.record("list")
	if f.listFn != nil {
		return f.listFn(ctx, remote)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items), nil
}

func (f *fakeSource) Create(ctx context.Context, rec member) (member, error) {
	f.record("create")
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = fmt.Sprint(f.nextID)
	f.items = append(f.items, rec)
	return rec, nil
}

func (f *fakeSource) Update(ctx context.Context, rec member) (member, error) {
	f.record("update")
	if f.updateFn != nil {
		return f.updateFn(ctx, rec)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == rec.ID {
			f.items[i] = rec
			return rec, nil
		}
	}
	return member{}, &apierr.NotFoundError{Resource: "staff member", ID: rec.ID}
}

func (f *fakeSource) Delete(ctx context.Context, id string) error {
	f.record("delete")
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return &apierr.NotFoundError{Resource: "staff member", ID: id}
}

func (f *fakeSource) ToggleStatus(ctx context.Context, rec member) (member, error) {
	f.record("toggle")
	if f.toggleFn != nil {
		return f.toggleFn(ctx, rec)
	}
	return f.Update(ctx, rec)
}

type note struct {
	Kind    Kind
	Message string
}

type recorder struct {
	mu      sync.Mutex
	notes   []note
	answer  bool
	prompts []string
}

func (r *recorder) Notify(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{Kind: kind, Message: message})
}

func (r *recorder) Confirm(_ context.Context, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, message)
	return r.answer
}

func (r *recorder) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

func ids(items []member) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.ID)
	}
	return out
}
