package screens

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type appointmentForm struct {
	CustomerName  string `json:"customer_name" validate:"required,max=120"`
	CustomerPhone string `json:"customer_phone" validate:"required,numeric,len=10"`
	Date          bool   `json:"appointment_date" validate:"required"`
	TimeSlot      string `json:"time_slot" validate:"required,timeslot"`
	Status        string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled rescheduled"`
}

func ValidateAppointment(a models.Appointment) error {
	err := check(appointmentForm{
		CustomerName:  strings.TrimSpace(a.CustomerName),
		CustomerPhone: strings.TrimSpace(a.CustomerPhone),
		Date:          !a.AppointmentDate.IsZero(),
		TimeSlot:      a.TimeSlot,
		Status:        a.Status,
	})
	if len(a.Services) > 0 || a.ComboID != nil {
		return err
	}
	ve := &apierr.ValidationError{Fields: map[string]string{}}
	if err != nil && !errors.As(err, &ve) {
		return err
	}
	ve.Fields["services"] = "select at least one service or a combo"
	return ve
}

// NextToggleStatus is the status a quick toggle moves an appointment to.
// Only pending and confirmed appointments can be toggled.
func NextToggleStatus(status string) (string, error) {
	switch status {
	case models.StatusPending, "":
		return models.StatusConfirmed, nil
	case models.StatusConfirmed:
		return models.StatusPending, nil
	}
	return "", apierr.Field("status", "a "+status+" appointment cannot be toggled")
}

func toggleAppointment(a models.Appointment) (models.Appointment, error) {
	next, err := NextToggleStatus(a.Status)
	if err != nil {
		return a, err
	}
	a.Status = next
	return a, nil
}

// AppointmentStats is the dashboard summary of a set of appointments.
// Revenue counts completed appointments only.
type AppointmentStats struct {
	Total       int
	ByStatus    map[string]int
	Revenue     decimal.Decimal
	Outstanding decimal.Decimal
}

func ComputeAppointmentStats(items []models.Appointment) AppointmentStats {
	st := AppointmentStats{
		Total:       len(items),
		ByStatus:    make(map[string]int, len(models.AppointmentStatuses)),
		Revenue:     decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, s := range models.AppointmentStatuses {
		st.ByStatus[s] = 0
	}
	for _, a := range items {
		st.ByStatus[a.Status]++
		switch a.Status {
		case models.StatusCompleted:
			st.Revenue = st.Revenue.Add(a.Total)
		case models.StatusPending, models.StatusConfirmed, models.StatusRescheduled:
			st.Outstanding = st.Outstanding.Add(a.Total)
		}
	}
	return st
}

func appointmentServiceNames(a models.Appointment) string {
	names := make([]string, 0, len(a.Services)+1)
	for _, s := range a.Services {
		names = append(names, s.Name)
	}
	if a.ComboName != "" {
		names = append(names, a.ComboName)
	}
	return strings.Join(names, " ")
}

// Appointments filters by day and status on the server (remote filters
// "date" as YYYY-MM-DD and "status"); everything else is local.
func Appointments(src listview.Source[models.Appointment]) listview.Config[models.Appointment] {
	return listview.Config[models.Appointment]{
		Name:   "appointment",
		Plural: "appointments",
		ID:     func(a models.Appointment) string { return a.ID },
		Label: func(a models.Appointment) string {
			return a.CustomerName + " on " + a.AppointmentDate.Format(models.DateLayout) + " " + a.TimeSlot
		},
		SearchFields: []func(models.Appointment) string{
			func(a models.Appointment) string { return a.CustomerName },
			func(a models.Appointment) string { return a.CustomerPhone },
			appointmentServiceNames,
		},
		SortKeys: map[string]listview.SortKey[models.Appointment]{
			"appointment_date": func(a models.Appointment) listview.Value {
				return listview.String(a.AppointmentDate.Format(models.DateLayout) + " " + a.TimeSlot)
			},
			"created_at": func(a models.Appointment) listview.Value { return listview.Time(a.CreatedAt) },
			"total":      func(a models.Appointment) listview.Value { return listview.Decimal(a.Total) },
		},
		DefaultSort:   listview.SortState{Key: "created_at", Direction: listview.Descending},
		Source:        src,
		Validate:      ValidateAppointment,
		Toggle:        toggleAppointment,
		ConfirmToggle: true,
		ToggleMessage: func(a models.Appointment) string { return "Appointment marked " + a.Status },
		Prepend:       true,
	}
}
