package screens

import (
	"strings"
	"time"

	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type serviceForm struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Price    float64 `json:"price" validate:"gte=0"`
	Duration int     `json:"duration" validate:"gt=0"`
	Category string  `json:"category" validate:"required,oneof=Hair Nails Skin Massage Other"`
	Gender   string  `json:"gender" validate:"required,oneof=male female unisex"`
}

func ValidateService(s models.Service) error {
	return check(serviceForm{
		Name:     strings.TrimSpace(s.Name),
		Price:    s.Price.InexactFloat64(),
		Duration: s.Duration,
		Category: s.Category,
		Gender:   s.Gender,
	})
}

func Services(src listview.Source[models.Service]) listview.Config[models.Service] {
	return listview.Config[models.Service]{
		Name:   "service",
		Plural: "services",
		ID:     func(s models.Service) string { return s.ID },
		Label:  func(s models.Service) string { return s.Name },
		SearchFields: []func(models.Service) string{
			func(s models.Service) string { return s.Name },
			func(s models.Service) string { return s.Description },
			func(s models.Service) string { return s.Category },
			func(s models.Service) string { return s.Gender },
		},
		Categories: map[string]func(models.Service) string{
			"category": func(s models.Service) string { return s.Category },
			"status":   func(s models.Service) string { return statusLabel(s.Active) },
			"gender":   func(s models.Service) string { return s.Gender },
		},
		SortKeys: map[string]listview.SortKey[models.Service]{
			"name":       func(s models.Service) listview.Value { return listview.String(s.Name) },
			"price":      func(s models.Service) listview.Value { return listview.Decimal(s.Price) },
			"duration":   func(s models.Service) listview.Value { return listview.Int(s.Duration) },
			"category":   func(s models.Service) listview.Value { return listview.String(s.Category) },
			"gender":     func(s models.Service) listview.Value { return listview.String(s.Gender) },
			"created_at": func(s models.Service) listview.Value { return listview.Time(s.CreatedAt) },
		},
		DefaultSort: listview.SortState{Key: "created_at", Direction: listview.Descending},
		Source:      src,
		Validate:    ValidateService,
		Toggle:      flipActive(func(s *models.Service) *bool { return &s.Active }),
		Prepend:     true,
	}
}

// optionalTime treats the zero time as missing so it sorts first.
func optionalTime(t time.Time) listview.Value {
	if t.IsZero() {
		return listview.Missing()
	}
	return listview.Time(t)
}
