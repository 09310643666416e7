package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var InventoryCategories = []string{"hair", "skin", "nails", "tools", "other"}

var InventoryUnits = []string{"ml", "g", "pcs", "bottle", "box"}

type InventoryItem struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:120;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:32;index" json:"category"`
	Quantity    int       `json:"quantity"`
	Unit        string    `gorm:"size:16" json:"unit"`
	Threshold   int       `json:"threshold"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// LowStock reports whether the item is below its restock threshold.
func (i InventoryItem) LowStock() bool {
	return i.Quantity < i.Threshold
}

const (
	TxRestock = "restock"
	TxUse     = "use"
)

// InventoryTransaction records one restock or usage of an item.
type InventoryTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemID    string    `gorm:"type:uuid;index" json:"item_id"`
	Type      string    `gorm:"size:16" json:"type"`
	Amount    int       `json:"amount"`
	ServiceID *string   `gorm:"type:uuid" json:"service_id,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
