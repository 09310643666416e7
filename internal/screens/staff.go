// Package screens configures one list view per back-office entity: which
// fields search looks at, the available category filters and sort keys,
// validation before submit, and what a status toggle does.
package screens

import (
	"strings"

	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type staffForm struct {
	Name    string  `json:"name" validate:"required,max=120"`
	Phone   string  `json:"phone" validate:"required,numeric,len=10"`
	Aadhaar string  `json:"aadhaar" validate:"required,numeric,len=12"`
	Role    string  `json:"role" validate:"required,oneof=Barber Stylist Receptionist Manager"`
	Gender  string  `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Salary  float64 `json:"salary" validate:"gte=0"`
}

func ValidateStaff(s models.Staff) error {
	return check(staffForm{
		Name:    strings.TrimSpace(s.Name),
		Phone:   strings.TrimSpace(s.Phone),
		Aadhaar: strings.TrimSpace(s.Aadhaar),
		Role:    s.Role,
		Gender:  s.Gender,
		Salary:  s.Salary.InexactFloat64(),
	})
}

func Staff(src listview.Source[models.Staff]) listview.Config[models.Staff] {
	return listview.Config[models.Staff]{
		Name:   "staff member",
		Plural: "staff",
		ID:     func(s models.Staff) string { return s.ID },
		Label:  func(s models.Staff) string { return s.Name },
		SearchFields: []func(models.Staff) string{
			func(s models.Staff) string { return s.Name },
			func(s models.Staff) string { return s.Phone },
			func(s models.Staff) string { return s.Aadhaar },
		},
		Categories: map[string]func(models.Staff) string{
			"role":   func(s models.Staff) string { return s.Role },
			"status": func(s models.Staff) string { return statusLabel(s.Active) },
		},
		SortKeys: map[string]listview.SortKey[models.Staff]{
			"name":       func(s models.Staff) listview.Value { return listview.String(s.Name) },
			"role":       func(s models.Staff) listview.Value { return listview.String(s.Role) },
			"salary":     func(s models.Staff) listview.Value { return listview.Decimal(s.Salary) },
			"dob":        func(s models.Staff) listview.Value { return optionalTime(s.DOB) },
			"created_at": func(s models.Staff) listview.Value { return listview.Time(s.CreatedAt) },
		},
		DefaultSort: listview.SortState{Key: "name"},
		Source:      src,
		Validate:    ValidateStaff,
		Toggle:      flipActive(func(s *models.Staff) *bool { return &s.Active }),
		ToggleMessage: func(s models.Staff) string {
			return "Staff member " + s.Name + " is now " + statusLabel(s.Active)
		},
	}
}

// flipActive builds a toggle that negates the record's Active flag.
func flipActive[T any](field func(*T) *bool) func(T) (T, error) {
	return func(rec T) (T, error) {
		p := field(&rec)
		*p = !*p
		return rec, nil
	}
}
