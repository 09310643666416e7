package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        models.User `json:"user"`
}

// Login exchanges credentials for a bearer token. It does not store the
// token anywhere.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	raw, err := c.send(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.Wrap(err, "decode login response")
	}
	if out.AccessToken == "" {
		return out, errors.New("login response carried no token")
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	raw, err := c.send(ctx, request{method: http.MethodGet, path: "/auth/me"})
	if err != nil {
		return models.User{}, err
	}
	u, err := decodeJSON[models.User](unwrapOne(raw))
	return u, errors.Wrap(err, "decode current user")
}

// AppointmentResource adds the appointment workflow endpoints.
type AppointmentResource struct {
	*Resource[models.Appointment]
}

// SetStatus moves an appointment to status.
func (r AppointmentResource) SetStatus(ctx context.Context, id, status string) (models.Appointment, error) {
	return r.one(ctx, request{
		method:   http.MethodPut,
		path:     r.itemPath(id) + "/status",
		body:     map[string]string{"status": status},
		resource: r.name,
		id:       id,
	})
}

// Reschedule moves an appointment to a new day and slot.
func (r AppointmentResource) Reschedule(ctx context.Context, id string, day time.Time, slot string) (models.Appointment, error) {
	return r.one(ctx, request{
		method: http.MethodPut,
		path:   r.itemPath(id) + "/reschedule",
		body: map[string]string{
			"appointment_date": day.Format(models.DateLayout),
			"time_slot":        slot,
		},
		resource: r.name,
		id:       id,
	})
}

// Today lists the records of the current day.
func (r *Resource[T]) Today(ctx context.Context) ([]T, error) {
	raw, err := r.c.send(ctx, request{method: http.MethodGet, path: r.path + "/today", resource: r.name})
	if err != nil {
		return nil, err
	}
	return decodeList(raw, r.decode, r.name)
}

// InventoryResource adds stock movements.
type InventoryResource struct {
	*Resource[models.InventoryItem]
}

// Restock adds amount units to an inventory item.
func (r InventoryResource) Restock(ctx context.Context, id string, amount int, notes string) (models.InventoryItem, error) {
	return r.one(ctx, request{
		method:   http.MethodPost,
		path:     r.itemPath(id) + "/restock",
		body:     map[string]any{"amount": amount, "notes": notes},
		resource: r.name,
		id:       id,
	})
}

// Use consumes amount units of an inventory item, optionally for a service.
func (r InventoryResource) Use(ctx context.Context, id string, amount int, serviceID, notes string) (models.InventoryItem, error) {
	body := map[string]any{"amount": amount, "notes": notes}
	if serviceID != "" {
		body["service_id"] = serviceID
	}
	return r.one(ctx, request{
		method:   http.MethodPost,
		path:     r.itemPath(id) + "/use",
		body:     body,
		resource: r.name,
		id:       id,
	})
}

func (r InventoryResource) Transactions(ctx context.Context, id string) ([]models.InventoryTransaction, error) {
	raw, err := r.c.send(ctx, request{method: http.MethodGet, path: r.itemPath(id) + "/transactions", resource: r.name, id: id})
	if err != nil {
		return nil, err
	}
	return decodeList(raw, decodeJSON[models.InventoryTransaction], "inventory transaction")
}

// MarkRequest records one attendance action. Action is one of checkIn,
// checkOut, absent or leave.
type MarkRequest struct {
	StaffID string    `json:"staff_id"`
	Action  string    `json:"action"`
	Date    string    `json:"date,omitempty"`
	At      time.Time `json:"at,omitzero"`
	Notes   string    `json:"notes,omitempty"`
}

const (
	MarkCheckIn  = "checkIn"
	MarkCheckOut = "checkOut"
	MarkAbsent   = "absent"
	MarkLeave    = "leave"
)

func (c *Client) MarkAttendance(ctx context.Context, m MarkRequest) (models.Attendance, error) {
	raw, err := c.send(ctx, request{method: http.MethodPost, path: "/admin/attendance", body: m, resource: "attendance record"})
	if err != nil {
		return models.Attendance{}, err
	}
	a, err := decodeAttendance(unwrapOne(raw))
	return a, errors.Wrap(err, "decode attendance record")
}

func (c *Client) AddHoliday(ctx context.Context, day time.Time, notes string) (models.Holiday, error) {
	raw, err := c.send(ctx, request{
		method: http.MethodPost,
		path:   "/admin/attendance/holiday",
		body:   map[string]string{"date": day.Format(models.DateLayout), "notes": notes},
	})
	if err != nil {
		return models.Holiday{}, err
	}
	h, err := decodeJSON[models.Holiday](unwrapOne(raw))
	return h, errors.Wrap(err, "decode holiday")
}

func (c *Client) RemoveHoliday(ctx context.Context, day time.Time) error {
	d := day.Format(models.DateLayout)
	_, err := c.send(ctx, request{
		method:   http.MethodDelete,
		path:     "/admin/attendance/holiday",
		query:    map[string]string{"date": d},
		resource: "holiday",
		id:       d,
	})
	return err
}

// AttendanceSummary aggregates a staff member's attendance over [from, to].
func (c *Client) AttendanceSummary(ctx context.Context, staffID string, from, to time.Time) (models.AttendanceSummary, error) {
	raw, err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/admin/staff/" + staffID + "/attendance/summary",
		query: map[string]string{
			"from": from.Format(models.DateLayout),
			"to":   to.Format(models.DateLayout),
		},
		resource: "staff member",
		id:       staffID,
	})
	if err != nil {
		return models.AttendanceSummary{}, err
	}
	s, err := decodeJSON[models.AttendanceSummary](unwrapOne(raw))
	return s, errors.Wrap(err, "decode attendance summary")
}
