package listview

import (
	"context"
	"fmt"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
)

// Create validates rec, submits it and inserts the server's copy.
func (c *Controller[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := c.begin(NewRecordKey, &rec); err != nil {
		return zero, err
	}
	saved, err := c.cfg.Source.Create(ctx, rec)
	if err != nil {
		c.fail(NewRecordKey, err, "Failed to create "+c.cfg.Name)
		return zero, err
	}
	if c.settle(recordSaved[T]{key: NewRecordKey, rec: saved, insert: true}) {
		c.notify(KindSuccess, c.nounTitle()+" created successfully")
	}
	return saved, nil
}

// Update validates rec, submits it and replaces the record by id with the
// server's copy.
func (c *Controller[T]) Update(ctx context.Context, rec T) (T, error) {
	var zero T
	id := c.cfg.ID(rec)
	if id == "" {
		return zero, apierr.Field("id", "is required")
	}
	if err := c.begin(id, &rec); err != nil {
		return zero, err
	}
	saved, err := c.cfg.Source.Update(ctx, rec)
	if err != nil {
		c.fail(id, err, "Failed to update "+c.cfg.Name)
		return zero, err
	}
	if c.settle(recordSaved[T]{key: id, rec: saved}) {
		c.notify(KindSuccess, c.nounTitle()+" updated successfully")
	}
	return saved, nil
}

// Delete asks for confirmation and, only when confirmed, deletes the record.
// A dismissed confirmation returns ErrCanceled without contacting the server.
func (c *Controller[T]) Delete(ctx context.Context, id string) error {
	rec, err := c.lookupIdle(id)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Delete %s %q? This cannot be undone.", c.cfg.Name, c.cfg.label(rec))
	if !c.confirm(ctx, msg) {
		return ErrCanceled
	}
	if err := c.begin(id, nil); err != nil {
		return err
	}
	if err := c.cfg.Source.Delete(ctx, id); err != nil {
		c.fail(id, err, "Failed to delete "+c.cfg.Name)
		return err
	}
	if c.settle(recordRemoved{key: id, id: id}) {
		c.notify(KindSuccess, c.nounTitle()+" deleted successfully")
	}
	return nil
}

// ToggleStatus flips the record's status optimistically. If the server
// rejects the change the status is flipped back on the current entry, which
// may be newer than the one the toggle started from.
func (c *Controller[T]) ToggleStatus(ctx context.Context, id string) (T, error) {
	var zero T
	if c.cfg.Toggle == nil {
		return zero, ErrUnsupported
	}
	prev, err := c.lookupIdle(id)
	if err != nil {
		return zero, err
	}
	next, err := c.cfg.Toggle(prev)
	if err != nil {
		ve := asValidation(err)
		c.mu.Lock()
		if !c.closed {
			c.apply(validationFailed{key: id, fields: ve.Fields})
		}
		c.mu.Unlock()
		return zero, ve
	}
	if c.cfg.ConfirmToggle {
		msg := fmt.Sprintf("Change the status of %s %q?", c.cfg.Name, c.cfg.label(prev))
		if !c.confirm(ctx, msg) {
			return zero, ErrCanceled
		}
	}
	if err := c.begin(id, nil); err != nil {
		return zero, err
	}
	c.mu.Lock()
	if !c.closed {
		c.apply(toggleApplied[T]{rec: next})
	}
	c.mu.Unlock()

	saved, err := c.cfg.Source.ToggleStatus(ctx, next)
	if err != nil {
		c.mu.Lock()
		if !c.closed {
			c.apply(toggleReverted{id: id})
		}
		c.mu.Unlock()
		c.fail(id, err, "Failed to update "+c.cfg.Name+" status")
		return zero, err
	}
	if c.settle(recordSaved[T]{key: id, rec: saved}) {
		msg := c.nounTitle() + " status updated"
		if c.cfg.ToggleMessage != nil {
			msg = c.cfg.ToggleMessage(saved)
		}
		c.notify(KindSuccess, msg)
	}
	return saved, nil
}

// lookupIdle returns the record with id if it exists and no request for it
// is in flight.
func (c *Controller[T]) lookupIdle(id string) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return zero, ErrClosed
	}
	i := indexOf(c.state.Items, &c.cfg, id)
	if i < 0 {
		return zero, &apierr.NotFoundError{Resource: c.cfg.Name, ID: id}
	}
	if c.state.Phase(id) != Idle {
		return zero, ErrBusy
	}
	return c.state.Items[i], nil
}

// begin runs Idle -> Validating -> Submitting for key. rec is validated when
// non-nil; an invalid record goes back to Idle with field errors.
func (c *Controller[T]) begin(key string, rec *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state.Phase(key) != Idle {
		return ErrBusy
	}
	c.apply(phaseChanged{key: key, phase: Validating})
	if rec != nil && c.cfg.Validate != nil {
		if err := c.cfg.Validate(*rec); err != nil {
			ve := asValidation(err)
			c.apply(validationFailed{key: key, fields: ve.Fields})
			return ve
		}
	}
	c.apply(phaseChanged{key: key, phase: Submitting})
	return nil
}

// fail returns key to Idle after a rejected request and notifies. A record
// the server no longer has is dropped locally.
func (c *Controller[T]) fail(key string, err error, fallback string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.apply(mutationFailed{key: key, fields: serverFields(err)})
	if key != NewRecordKey && apierr.IsNotFound(err) {
		c.apply(recordRemoved{key: key, id: key})
	}
	c.mu.Unlock()
	c.deps.Logger.Warn("mutation failed", "key", key, "err", err)
	c.notify(KindError, apierr.UserMessage(err, fallback))
}

// settle reduces a successful outcome unless the screen is gone. Any fetch
// still in flight is canceled since it may predate the mutation.
func (c *Controller[T]) settle(msg Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.apply(msg)
	return true
}
