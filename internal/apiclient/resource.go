package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

// statusCall describes how a resource persists a status change.
type statusCall[T any] struct {
	method string
	body   func(T) any
}

// Resource is the REST collection of one entity type. It satisfies
// listview.Source.
type Resource[T any] struct {
	c      *Client
	name   string
	path   string
	id     func(T) string
	decode func(json.RawMessage) (T, error)
	status *statusCall[T]
}

func newResource[T any](c *Client, name, path string, id func(T) string, decode func(json.RawMessage) (T, error)) *Resource[T] {
	if decode == nil {
		decode = decodeJSON[T]
	}
	return &Resource[T]{c: c, name: name, path: path, id: id, decode: decode}
}

func (r *Resource[T]) withStatus(method string, body func(T) any) *Resource[T] {
	r.status = &statusCall[T]{method: method, body: body}
	return r
}

func (r *Resource[T]) Name() string { return r.name }

// Decode normalizes one record the way responses are normalized. The CLI
// uses it to read records typed by the operator.
func (r *Resource[T]) Decode(raw []byte) (T, error) {
	return r.decode(json.RawMessage(raw))
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// List fetches the whole collection. remote is sent as query parameters.
func (r *Resource[T]) List(ctx context.Context, remote map[string]string) ([]T, error) {
	query := map[string]string{"all": "true"}
	for k, v := range remote {
		query[k] = v
	}
	raw, err := r.c.send(ctx, request{method: http.MethodGet, path: r.path, query: query, resource: r.name})
	if err != nil {
		return nil, err
	}
	return decodeList(raw, r.decode, r.name)
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	return r.one(ctx, request{method: http.MethodGet, path: r.itemPath(id), resource: r.name, id: id})
}

func (r *Resource[T]) Create(ctx context.Context, rec T) (T, error) {
	return r.one(ctx, request{method: http.MethodPost, path: r.path, body: rec, resource: r.name})
}

func (r *Resource[T]) Update(ctx context.Context, rec T) (T, error) {
	id := r.id(rec)
	return r.one(ctx, request{method: http.MethodPut, path: r.itemPath(id), body: rec, resource: r.name, id: id})
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.c.send(ctx, request{method: http.MethodDelete, path: r.itemPath(id), resource: r.name, id: id})
	return err
}

// ToggleStatus persists the status carried by rec.
func (r *Resource[T]) ToggleStatus(ctx context.Context, rec T) (T, error) {
	if r.status == nil {
		var zero T
		return zero, errors.Errorf("%s has no status endpoint", r.name)
	}
	id := r.id(rec)
	return r.one(ctx, request{
		method:   r.status.method,
		path:     r.itemPath(id) + "/status",
		body:     r.status.body(rec),
		resource: r.name,
		id:       id,
	})
}

func (r *Resource[T]) one(ctx context.Context, req request) (T, error) {
	var zero T
	raw, err := r.c.send(ctx, req)
	if err != nil {
		return zero, err
	}
	rec, err := r.decode(unwrapOne(raw))
	if err != nil {
		return zero, errors.Wrapf(err, "decode %s", r.name)
	}
	return rec, nil
}

func activeBody(active bool) any { return map[string]bool{"active": active} }

func (c *Client) Staff() *Resource[models.Staff] {
	return newResource(c, "staff member", "/admin/staff",
		func(s models.Staff) string { return s.ID }, decodeStaff).
		withStatus(http.MethodPatch, func(s models.Staff) any { return activeBody(s.Active) })
}

func (c *Client) Services() *Resource[models.Service] {
	return newResource(c, "service", "/admin/services",
		func(s models.Service) string { return s.ID }, nil).
		withStatus(http.MethodPatch, func(s models.Service) any { return activeBody(s.Active) })
}

func (c *Client) Combos() *Resource[models.Combo] {
	return newResource(c, "combo", "/admin/combos",
		func(s models.Combo) string { return s.ID }, decodeCombo).
		withStatus(http.MethodPatch, func(s models.Combo) any { return activeBody(s.Active) })
}

func (c *Client) Appointments() AppointmentResource {
	return AppointmentResource{newResource(c, "appointment", "/admin/appointments",
		func(a models.Appointment) string { return a.ID }, decodeAppointment).
		withStatus(http.MethodPut, func(a models.Appointment) any { return map[string]string{"status": a.Status} })}
}

func (c *Client) Inventory() InventoryResource {
	return InventoryResource{newResource(c, "inventory item", "/admin/inventory",
		func(i models.InventoryItem) string { return i.ID }, nil)}
}

func (c *Client) Attendance() *Resource[models.Attendance] {
	return newResource(c, "attendance record", "/admin/attendance",
		func(a models.Attendance) string { return a.ID }, decodeAttendance)
}
