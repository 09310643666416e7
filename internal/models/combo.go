package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ComboGenders = []string{"male", "female"}

// Combo bundles several services, performed in Sequence order, at a discount.
type Combo struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"size:120;uniqueIndex" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Gender        string          `gorm:"size:16;index" json:"gender"`
	Items         []ComboItem     `gorm:"foreignKey:ComboID;constraint:OnDelete:CASCADE" json:"services"`
	Discount      int             `json:"discount"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_price"`
	TotalDuration int             `json:"total_duration"`
	Active        bool            `gorm:"index" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ComboItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	ComboID   string          `gorm:"type:uuid;index" json:"-"`
	ServiceID string          `gorm:"type:uuid" json:"service_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Duration  int             `json:"duration"`
	Sequence  int             `json:"sequence"`
}

func (c *Combo) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Recalculate orders items by sequence and derives TotalPrice (after
// discount, rounded to cents) and TotalDuration.
func (c *Combo) Recalculate() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		return c.Items[i].Sequence < c.Items[j].Sequence
	})
	sum := decimal.Zero
	duration := 0
	for _, it := range c.Items {
		sum = sum.Add(it.Price)
		duration += it.Duration
	}
	c.TotalPrice = ComboPrice(sum, c.Discount)
	c.TotalDuration = duration
}

// OriginalPrice is the undiscounted sum of the bundled services.
func (c Combo) OriginalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Price)
	}
	return sum
}

func ComboPrice(sum decimal.Decimal, discount int) decimal.Decimal {
	if discount < 0 {
		discount = 0
	}
	if discount > 100 {
		discount = 100
	}
	factor := decimal.NewFromInt(int64(100 - discount)).Div(decimal.NewFromInt(100))
	return sum.Mul(factor).Round(2)
}
