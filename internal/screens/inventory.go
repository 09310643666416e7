package screens

import (
	"strings"

	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type inventoryForm struct {
	Name      string `json:"name" validate:"required,max=120"`
	Category  string `json:"category" validate:"required,oneof=hair skin nails tools other"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Unit      string `json:"unit" validate:"required,oneof=ml g pcs bottle box"`
	Threshold int    `json:"threshold" validate:"gte=0"`
}

func ValidateInventoryItem(i models.InventoryItem) error {
	return check(inventoryForm{
		Name:      strings.TrimSpace(i.Name),
		Category:  i.Category,
		Quantity:  i.Quantity,
		Unit:      i.Unit,
		Threshold: i.Threshold,
	})
}

func Inventory(src listview.Source[models.InventoryItem]) listview.Config[models.InventoryItem] {
	return listview.Config[models.InventoryItem]{
		Name:   "inventory item",
		Plural: "inventory",
		ID:     func(i models.InventoryItem) string { return i.ID },
		Label:  func(i models.InventoryItem) string { return i.Name },
		SearchFields: []func(models.InventoryItem) string{
			func(i models.InventoryItem) string { return i.Name },
			func(i models.InventoryItem) string { return i.Description },
		},
		Categories: map[string]func(models.InventoryItem) string{
			"category": func(i models.InventoryItem) string { return i.Category },
		},
		Flags: map[string]func(models.InventoryItem) bool{
			"low_stock": models.InventoryItem.LowStock,
		},
		SortKeys: map[string]listview.SortKey[models.InventoryItem]{
			"name":       func(i models.InventoryItem) listview.Value { return listview.String(i.Name) },
			"quantity":   func(i models.InventoryItem) listview.Value { return listview.Int(i.Quantity) },
			"category":   func(i models.InventoryItem) listview.Value { return listview.String(i.Category) },
			"updated_at": func(i models.InventoryItem) listview.Value { return listview.Time(i.UpdatedAt) },
		},
		DefaultSort: listview.SortState{Key: "name"},
		Source:      src,
		Validate:    ValidateInventoryItem,
	}
}
