package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

var jsonNull = []byte("null")

// splitList accepts a bare array or an object carrying the array under
// "data" (or "items").
func splitList(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, nil
	}
	if raw[0] != '[' {
		var env struct {
			Data  json.RawMessage `json:"data"`
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		raw = bytes.TrimSpace(env.Data)
		if len(raw) == 0 {
			raw = bytes.TrimSpace(env.Items)
		}
		if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
			return nil, nil
		}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// unwrapOne returns the object under "data" when the body is an envelope.
func unwrapOne(raw []byte) json.RawMessage {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return raw
	}
	if inner, ok := env["data"]; ok {
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '{' {
			return inner
		}
	}
	return raw
}

func decodeList[T any](raw []byte, decode func(json.RawMessage) (T, error), what string) ([]T, error) {
	parts, err := splitList(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s list", what)
	}
	out := make([]T, 0, len(parts))
	for i, p := range parts {
		rec, err := decode(p)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s list item %d", what, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeJSON[T any](raw json.RawMessage) (T, error) {
	var rec T
	err := json.Unmarshal(raw, &rec)
	return rec, err
}

func orDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func decimalOr(d decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return def
}

type staffWire struct {
	ID        models.FlexibleString      `json:"id"`
	Name      string              `json:"name"`
	Phone     models.FlexibleString      `json:"phone"`
	Aadhaar   models.FlexibleString      `json:"aadhaar"`
	DOB       models.FlexibleTime        `json:"dob"`
	Gender    string              `json:"gender"`
	Address   string              `json:"address"`
	Salary    decimal.NullDecimal `json:"salary"`
	Role      string              `json:"role"`
	Active    *bool               `json:"active"`
	CreatedAt models.FlexibleTime        `json:"created_at"`
	UpdatedAt models.FlexibleTime        `json:"updated_at"`
}

func decodeStaff(raw json.RawMessage) (models.Staff, error) {
	var w staffWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Staff{}, err
	}
	return models.Staff{
		ID:        w.ID.String(),
		Name:      strings.TrimSpace(w.Name),
		Phone:     w.Phone.String(),
		Aadhaar:   w.Aadhaar.String(),
		DOB:       w.DOB.Time,
		Gender:    w.Gender,
		Address:   w.Address,
		Salary:    decimalOr(w.Salary, decimal.Zero),
		Role:      w.Role,
		Active:    orDefault(w.Active, true),
		CreatedAt: w.CreatedAt.Time,
		UpdatedAt: w.UpdatedAt.Time,
	}, nil
}

// serviceRef is a nested service as some endpoints embed it.
type serviceRef struct {
	ID       models.FlexibleString      `json:"id"`
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	Duration int                 `json:"duration"`
}

type lineWire struct {
	ServiceID models.FlexibleString      `json:"service_id"`
	Name      string              `json:"name"`
	Price     decimal.NullDecimal `json:"price"`
	Duration  int                 `json:"duration"`
	Sequence  int                 `json:"sequence"`
	Service   *serviceRef         `json:"service"`
}

func (l lineWire) resolve() (id, name string, price decimal.Decimal, duration int) {
	id, name, price, duration = l.ServiceID.String(), l.Name, decimalOr(l.Price, decimal.Zero), l.Duration
	if s := l.Service; s != nil {
		if id == "" {
			id = s.ID.String()
		}
		if name == "" {
			name = s.Name
		}
		if !l.Price.Valid {
			price = decimalOr(s.Price, decimal.Zero)
		}
		if duration == 0 {
			duration = s.Duration
		}
	}
	return id, name, price, duration
}

type appointmentWire struct {
	ID              models.FlexibleString      `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   models.FlexibleString      `json:"customer_phone"`
	AppointmentDate models.FlexibleTime        `json:"appointment_date"`
	TimeSlot        string              `json:"time_slot"`
	Status          string              `json:"status"`
	Services        []lineWire          `json:"services"`
	ComboID         *string             `json:"combo_id"`
	ComboName       string              `json:"combo_name"`
	Combo           *struct {
		ID   models.FlexibleString `json:"id"`
		Name string         `json:"name"`
	} `json:"combo"`
	Total     decimal.NullDecimal `json:"total"`
	Notes     string              `json:"notes"`
	CreatedAt models.FlexibleTime        `json:"created_at"`
	UpdatedAt models.FlexibleTime        `json:"updated_at"`
}

func decodeAppointment(raw json.RawMessage) (models.Appointment, error) {
	var w appointmentWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Appointment{}, err
	}
	a := models.Appointment{
		ID:              w.ID.String(),
		CustomerName:    strings.TrimSpace(w.CustomerName),
		CustomerPhone:   w.CustomerPhone.String(),
		AppointmentDate: w.AppointmentDate.Time,
		TimeSlot:        w.TimeSlot,
		Status:          strings.ToLower(strings.TrimSpace(w.Status)),
		Services:        make([]models.AppointmentService, 0, len(w.Services)),
		ComboID:         w.ComboID,
		ComboName:       w.ComboName,
		Notes:           w.Notes,
		CreatedAt:       w.CreatedAt.Time,
		UpdatedAt:       w.UpdatedAt.Time,
	}
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	if c := w.Combo; c != nil {
		if a.ComboID == nil && c.ID != "" {
			id := c.ID.String()
			a.ComboID = &id
		}
		if a.ComboName == "" {
			a.ComboName = c.Name
		}
	}
	sum := decimal.Zero
	for _, l := range w.Services {
		id, name, price, _ := l.resolve()
		a.Services = append(a.Services, models.AppointmentService{ServiceID: id, Name: name, Price: price})
		sum = sum.Add(price)
	}
	a.Total = decimalOr(w.Total, sum)
	return a, nil
}

type comboWire struct {
	ID            models.FlexibleString      `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Gender        string              `json:"gender"`
	Services      []lineWire          `json:"services"`
	Discount      int                 `json:"discount"`
	TotalPrice    decimal.NullDecimal `json:"total_price"`
	TotalDuration *int                `json:"total_duration"`
	Active        *bool               `json:"active"`
	CreatedAt     models.FlexibleTime        `json:"created_at"`
	UpdatedAt     models.FlexibleTime        `json:"updated_at"`
}

func decodeCombo(raw json.RawMessage) (models.Combo, error) {
	var w comboWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Combo{}, err
	}
	c := models.Combo{
		ID:          w.ID.String(),
		Name:        strings.TrimSpace(w.Name),
		Description: w.Description,
		Gender:      strings.ToLower(w.Gender),
		Items:       make([]models.ComboItem, 0, len(w.Services)),
		Discount:    w.Discount,
		Active:      orDefault(w.Active, true),
		CreatedAt:   w.CreatedAt.Time,
		UpdatedAt:   w.UpdatedAt.Time,
	}
	for i, l := range w.Services {
		id, name, price, duration := l.resolve()
		seq := l.Sequence
		if seq == 0 {
			seq = i + 1
		}
		c.Items = append(c.Items, models.ComboItem{
			ServiceID: id, Name: name, Price: price, Duration: duration, Sequence: seq,
		})
	}
	c.Recalculate()
	if w.TotalPrice.Valid {
		c.TotalPrice = w.TotalPrice.Decimal
	}
	if w.TotalDuration != nil {
		c.TotalDuration = *w.TotalDuration
	}
	return c, nil
}

type attendanceWire struct {
	ID        models.FlexibleString `json:"id"`
	StaffID   models.FlexibleString `json:"staff_id"`
	StaffName string         `json:"staff_name"`
	Staff     *struct {
		ID   models.FlexibleString `json:"id"`
		Name string         `json:"name"`
	} `json:"staff"`
	Date      models.FlexibleTime `json:"date"`
	CheckIn   models.FlexibleTime `json:"check_in"`
	CheckOut  models.FlexibleTime `json:"check_out"`
	Status    string       `json:"status"`
	Notes     string       `json:"notes"`
	CreatedAt models.FlexibleTime `json:"created_at"`
	UpdatedAt models.FlexibleTime `json:"updated_at"`
}

func decodeAttendance(raw json.RawMessage) (models.Attendance, error) {
	var w attendanceWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Attendance{}, err
	}
	a := models.Attendance{
		ID:        w.ID.String(),
		StaffID:   w.StaffID.String(),
		StaffName: w.StaffName,
		Date:      models.DayOf(w.Date.Time),
		CheckIn:   w.CheckIn.Ptr(),
		CheckOut:  w.CheckOut.Ptr(),
		Status:    strings.ToLower(w.Status),
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt.Time,
		UpdatedAt: w.UpdatedAt.Time,
	}
	if s := w.Staff; s != nil {
		if a.StaffID == "" {
			a.StaffID = s.ID.String()
		}
		if a.StaffName == "" {
			a.StaffName = s.Name
		}
	}
	if a.Status == "" {
		a.Status = models.AttendancePresent
		if a.CheckIn == nil {
			a.Status = models.AttendanceAbsent
		}
	}
	return a, nil
}
