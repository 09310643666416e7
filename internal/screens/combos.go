package screens

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type comboForm struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Gender   string   `json:"gender" validate:"required,oneof=male female"`
	Services []string `json:"services" validate:"min=1,dive,required"`
	Discount int      `json:"discount" validate:"gte=0,lte=100"`
}

func ValidateCombo(c models.Combo) error {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ServiceID)
	}
	return check(comboForm{
		Name:     strings.TrimSpace(c.Name),
		Gender:   c.Gender,
		Services: ids,
		Discount: c.Discount,
	})
}

// Totals is the price breakdown shown while composing a combo.
type Totals struct {
	Original decimal.Decimal
	Price    decimal.Decimal
	Savings  decimal.Decimal
	Duration int
}

// ComboTotals prices the selected services at discount percent off.
func ComboTotals(items []models.ComboItem, discount int) Totals {
	c := models.Combo{Items: slices.Clone(items), Discount: discount}
	original := c.OriginalPrice()
	c.Recalculate()
	return Totals{
		Original: original,
		Price:    c.TotalPrice,
		Savings:  original.Sub(c.TotalPrice),
		Duration: c.TotalDuration,
	}
}

func serviceNames(items []models.ComboItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return strings.Join(names, " ")
}

func Combos(src listview.Source[models.Combo]) listview.Config[models.Combo] {
	return listview.Config[models.Combo]{
		Name:   "combo",
		Plural: "combos",
		ID:     func(c models.Combo) string { return c.ID },
		Label:  func(c models.Combo) string { return c.Name },
		SearchFields: []func(models.Combo) string{
			func(c models.Combo) string { return c.Name },
			func(c models.Combo) string { return c.Description },
			func(c models.Combo) string { return serviceNames(c.Items) },
		},
		Categories: map[string]func(models.Combo) string{
			"gender": func(c models.Combo) string { return c.Gender },
			"status": func(c models.Combo) string { return statusLabel(c.Active) },
		},
		SortKeys: map[string]listview.SortKey[models.Combo]{
			"name":           func(c models.Combo) listview.Value { return listview.String(c.Name) },
			"total_price":    func(c models.Combo) listview.Value { return listview.Decimal(c.TotalPrice) },
			"total_duration": func(c models.Combo) listview.Value { return listview.Int(c.TotalDuration) },
			"discount":       func(c models.Combo) listview.Value { return listview.Int(c.Discount) },
		},
		DefaultSort: listview.SortState{Key: "name"},
		Source:      src,
		Validate:    ValidateCombo,
		Toggle:      flipActive(func(c *models.Combo) *bool { return &c.Active }),
	}
}
