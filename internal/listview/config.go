package listview

import (
	"context"
	"errors"
)

var (
	// ErrBusy rejects a mutation on a record that is already submitting.
	ErrBusy = errors.New("a request for this record is already in progress")
	// ErrCanceled is returned when the operator dismissed a confirmation.
	ErrCanceled = errors.New("action canceled")
	// ErrClosed is returned once the screen owning the controller is gone.
	ErrClosed = errors.New("list view closed")
	// ErrStale is returned to the caller of a fetch whose response was
	// superseded and discarded.
	ErrStale = errors.New("stale response discarded")
	// ErrUnsupported is returned for a status toggle on a screen without one.
	ErrUnsupported = errors.New("operation not supported for this list")
)

// Source is the REST boundary of one entity type.
type Source[T any] interface {
	List(ctx context.Context, remote map[string]string) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) (T, error)
	Delete(ctx context.Context, id string) error
	// ToggleStatus persists the already-toggled record and returns the
	// server's copy.
	ToggleStatus(ctx context.Context, rec T) (T, error)
}

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Notifier shows transient, non-blocking messages.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Confirmer asks the operator to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

type NotifierFunc func(kind Kind, message string)

func (f NotifierFunc) Notify(kind Kind, message string) { f(kind, message) }

type ConfirmerFunc func(ctx context.Context, message string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// Config parameterizes a Controller for one entity type.
type Config[T any] struct {
	// Name is the singular noun used in messages ("staff member"), Plural the
	// collection noun ("staff").
	Name   string
	Plural string

	ID    func(T) string
	Label func(T) string

	SearchFields []func(T) string
	Categories   map[string]func(T) string
	Flags        map[string]func(T) bool
	SortKeys     map[string]SortKey[T]

	DefaultSort   SortState
	DefaultFilter FilterState
	PageSize      int

	Source   Source[T]
	Validate func(T) error

	// Toggle computes the record after a status toggle, or rejects it.
	// Nil means the entity has no status toggle.
	Toggle        func(T) (T, error)
	ToggleMessage func(T) string
	ConfirmToggle bool

	// Prepend places created records first instead of last.
	Prepend bool
}

func (c *Config[T]) label(rec T) string {
	if c.Label != nil {
		return c.Label(rec)
	}
	return c.ID(rec)
}
