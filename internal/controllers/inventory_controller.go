package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

type InventoryController struct {
	DB     *gorm.DB
	Events Publisher
}

type inventoryRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required,oneof=hair skin nails tools other"`
	Quantity    int    `json:"quantity" binding:"gte=0"`
	Unit        string `json:"unit" binding:"required,oneof=ml g pcs bottle box"`
	Threshold   int    `json:"threshold" binding:"gte=0"`
}

func (r inventoryRequest) apply(i *models.InventoryItem) {
	i.Name = strings.TrimSpace(r.Name)
	i.Description = strings.TrimSpace(r.Description)
	i.Category = r.Category
	i.Quantity = r.Quantity
	i.Unit = r.Unit
	i.Threshold = r.Threshold
}

type stockRequest struct {
	Amount    int            `json:"amount" binding:"required,gt=0"`
	ServiceID models.FlexibleString `json:"service_id"`
	Notes     string         `json:"notes"`
}

func (ic *InventoryController) ListInventory(c *gin.Context) {
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"name":       "name",
		"quantity":   "quantity",
		"category":   "category",
	}
	q := parseListQuery(c, allowedSorts, "name", "ASC")

	base := search(ic.DB.Model(&models.InventoryItem{}), q.Q, "name", "description")
	if cat := strings.TrimSpace(strings.ToLower(c.Query("category"))); cat != "" {
		if !slices.Contains(models.InventoryCategories, cat) {
			failField(c, http.StatusBadRequest, "category", "invalid category")
			return
		}
		base = base.Where("category = ?", cat)
	}
	switch strings.ToLower(c.Query("low_stock")) {
	case "true", "1":
		base = base.Where("quantity < threshold")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	var items []models.InventoryItem
	if err := q.page(base).Find(&items).Error; err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "meta": q.meta(total)})
}

func (ic *InventoryController) CreateItem(c *gin.Context) {
	var req inventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	var item models.InventoryItem
	req.apply(&item)
	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if item.Quantity == 0 {
			return nil
		}
		return tx.Create(&models.InventoryTransaction{
			ItemID: item.ID, Type: models.TxRestock, Amount: item.Quantity, Notes: "opening stock",
		}).Error
	})
	if err != nil {
		storeFailed(c, err, "inventory item", "name")
		return
	}
	publish(ic.Events, models.ResourceInventory, models.ActionCreated, item.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "created", "data": item})
}

func (ic *InventoryController) GetItem(c *gin.Context) {
	var item models.InventoryItem
	if err := ic.DB.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (ic *InventoryController) UpdateItem(c *gin.Context) {
	var item models.InventoryItem
	if err := ic.DB.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	var req inventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.apply(&item)
	if err := ic.DB.Save(&item).Error; err != nil {
		storeFailed(c, err, "inventory item", "name")
		return
	}
	publish(ic.Events, models.ResourceInventory, models.ActionUpdated, item.ID)
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": item})
}

func (ic *InventoryController) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.InventoryTransaction{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.InventoryItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	publish(ic.Events, models.ResourceInventory, models.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (ic *InventoryController) Restock(c *gin.Context) {
	ic.move(c, models.TxRestock)
}

// Use consumes stock. Taking more than is on hand is refused.
func (ic *InventoryController) Use(c *gin.Context) {
	ic.move(c, models.TxUse)
}

type insufficientStock struct {
	have int
	unit string
}

func (e *insufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock: only %d %s left", e.have, e.unit)
}

func (ic *InventoryController) move(c *gin.Context, kind string) {
	var req stockRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	var item models.InventoryItem
	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		delta := gorm.Expr("quantity + ?", req.Amount)
		cond := tx.Model(&models.InventoryItem{}).Where("id = ?", id)
		if kind == models.TxUse {
			delta = gorm.Expr("quantity - ?", req.Amount)
			cond = cond.Where("quantity >= ?", req.Amount)
		}
		res := cond.Update("quantity", delta)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return &insufficientStock{have: item.Quantity, unit: item.Unit}
		}
		txn := models.InventoryTransaction{ItemID: id, Type: kind, Amount: req.Amount, Notes: strings.TrimSpace(req.Notes)}
		if sid := req.ServiceID.String(); sid != "" {
			txn.ServiceID = &sid
		}
		return tx.Create(&txn).Error
	})
	var short *insufficientStock
	if errors.As(err, &short) {
		failField(c, http.StatusBadRequest, "amount", short.Error())
		return
	}
	if err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	publish(ic.Events, models.ResourceInventory, models.ActionUpdated, item.ID)
	c.JSON(http.StatusOK, gin.H{"message": "stock updated", "data": item})
}

func (ic *InventoryController) Transactions(c *gin.Context) {
	id := c.Param("id")
	var item models.InventoryItem
	if err := ic.DB.Where("id = ?", id).First(&item).Error; err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	var txns []models.InventoryTransaction
	if err := ic.DB.Where("item_id = ?", id).Order("created_at DESC, id DESC").Find(&txns).Error; err != nil {
		storeFailed(c, err, "inventory item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": txns, "meta": gin.H{"total": len(txns), "item": item.Name}})
}
