package screens

import (
	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type attendanceForm struct {
	StaffID string `json:"staff_id" validate:"required"`
	Date    bool   `json:"date" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=present absent leave holiday"`
}

func ValidateAttendance(a models.Attendance) error {
	if err := check(attendanceForm{StaffID: a.StaffID, Date: !a.Date.IsZero(), Status: a.Status}); err != nil {
		return err
	}
	if a.CheckIn != nil && a.CheckOut != nil && a.CheckOut.Before(*a.CheckIn) {
		return apierr.Field("check_out", "must be after check-in")
	}
	return nil
}

// Attendance lists attendance records. The date range and staff member are
// remote filters ("start", "end", "staff_id").
func Attendance(src listview.Source[models.Attendance]) listview.Config[models.Attendance] {
	return listview.Config[models.Attendance]{
		Name:   "attendance record",
		Plural: "attendance records",
		ID:     func(a models.Attendance) string { return a.ID },
		Label: func(a models.Attendance) string {
			return a.StaffName + " on " + a.Date.Format(models.DateLayout)
		},
		SearchFields: []func(models.Attendance) string{
			func(a models.Attendance) string { return a.StaffName },
		},
		Categories: map[string]func(models.Attendance) string{
			"status": func(a models.Attendance) string { return a.Status },
		},
		SortKeys: map[string]listview.SortKey[models.Attendance]{
			"date":       func(a models.Attendance) listview.Value { return listview.Time(a.Date) },
			"staff_name": func(a models.Attendance) listview.Value { return listview.String(a.StaffName) },
			"hours":      func(a models.Attendance) listview.Value { return listview.Number(a.HoursWorked()) },
		},
		DefaultSort: listview.SortState{Key: "date", Direction: listview.Descending},
		Source:      src,
		Validate:    ValidateAttendance,
	}
}
