// Package listview implements the list-view controller shared by every
// back-office screen: fetch a collection, derive a filtered, sorted, paged
// view of it, and run create/update/delete/status mutations against it.
//
// A Controller is owned by one screen. All state transitions go through
// Reduce; network calls happen outside the lock and their outcomes are
// reduced on arrival, so responses that were superseded (by a later fetch,
// a successful mutation, or Close) are dropped.
package listview

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/logger"
)

// Deps is the explicit context a screen hands its controller.
type Deps struct {
	Notifier  Notifier
	Confirmer Confirmer
	Logger    logger.Logger
}

type Controller[T any] struct {
	cfg  Config[T]
	deps Deps

	mu          sync.Mutex
	state       State[T]
	closed      bool
	cancelFetch context.CancelFunc
}

func New[T any](cfg Config[T], deps Deps) (*Controller[T], error) {
	if cfg.ID == nil {
		return nil, errors.New("listview: config ID accessor is required")
	}
	if cfg.Source == nil {
		return nil, errors.New("listview: config Source is required")
	}
	if cfg.Name == "" {
		cfg.Name = "record"
	}
	if cfg.Plural == "" {
		cfg.Plural = cfg.Name + "s"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if deps.Notifier == nil {
		deps.Notifier = NotifierFunc(func(Kind, string) {})
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	deps.Logger = deps.Logger.With("list", cfg.Plural)
	return &Controller[T]{
		cfg:  cfg,
		deps: deps,
		state: State[T]{
			Items:    []T{},
			Filter:   cfg.DefaultFilter.clone(),
			Sort:     cfg.DefaultSort,
			Page:     1,
			PageSize: cfg.PageSize,
		},
	}, nil
}

// Config returns the controller's configuration.
func (c *Controller[T]) Config() *Config[T] {
	return &c.cfg
}

// State returns a snapshot of the raw state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the derived view and page of the current state.
func (c *Controller[T]) View() View[T] {
	s := c.State()
	return Derive(s, &c.cfg)
}

// Find looks a record up in the collection by id.
func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.state.Items, &c.cfg, id); i >= 0 {
		return c.state.Items[i], true
	}
	var zero T
	return zero, false
}

// Dispatch reduces an operator command and performs the effect it asks for.
func (c *Controller[T]) Dispatch(ctx context.Context, cmd Command) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	eff := c.apply(cmd)
	c.mu.Unlock()
	if eff == RefetchEffect {
		return c.Refresh(ctx)
	}
	return nil
}

// Refresh fetches the collection with the current remote filters. A newer
// fetch cancels and supersedes an older one. On failure the previous
// collection stays in place and an error notification is shown.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.apply(fetchStarted{})
	seq := c.state.seq
	remote := maps.Clone(c.state.Filter.Remote)
	fctx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel
	c.mu.Unlock()
	defer cancel()

	items, err := c.cfg.Source.List(fctx, remote)

	c.mu.Lock()
	if c.closed || seq != c.state.seq {
		c.mu.Unlock()
		c.deps.Logger.Debug("discarding stale fetch", "seq", seq)
		return ErrStale
	}
	c.cancelFetch = nil
	if err != nil {
		c.apply(fetchFailed{err: err})
		c.mu.Unlock()
		c.deps.Logger.Warn("fetch failed", "err", err)
		c.notify(KindError, apierr.UserMessage(err, "Failed to fetch "+c.cfg.Plural))
		return err
	}
	c.apply(fetchSucceeded[T]{items: items})
	c.mu.Unlock()
	c.deps.Logger.Debug("fetched", "count", len(items))
	return nil
}

// Close detaches the controller from its screen. In-flight requests are
// canceled and their outcomes ignored.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

// apply must be called with mu held.
func (c *Controller[T]) apply(cmd Command) Effect {
	next, eff := Reduce(c.state, &c.cfg, cmd)
	c.state = next
	return eff
}

func (c *Controller[T]) notify(kind Kind, msg string) {
	c.deps.Notifier.Notify(kind, msg)
}

func (c *Controller[T]) confirm(ctx context.Context, msg string) bool {
	if c.deps.Confirmer == nil {
		return false
	}
	return c.deps.Confirmer.Confirm(ctx, msg)
}

func (c *Controller[T]) nounTitle() string {
	return upperFirst(c.cfg.Name)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func asValidation(err error) *apierr.ValidationError {
	var ve *apierr.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return apierr.Field("_", err.Error())
}

func serverFields(err error) map[string]string {
	var se *apierr.ServerError
	if errors.As(err, &se) && se.Field != "" {
		msg := se.Message
		if msg == "" {
			msg = fmt.Sprintf("rejected (%d)", se.Status)
		}
		return map[string]string{se.Field: msg}
	}
	return nil
}
