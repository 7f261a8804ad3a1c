package ws

import (
	"github.com/google/uuid"
)

type StockChange struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Delta     int       `json:"delta"`
}

// StockUpdate is the "stock_update" event pushed after anything moves stock.
type StockUpdate struct {
	Type    string        `json:"type"`
	Action  string        `json:"action"`
	Changes []StockChange `json:"changes"`
	UserID  uuid.UUID     `json:"user_id"`
	Message string        `json:"message,omitempty"`
}

const (
	ActionSaleCommitted    = "sale_committed"
	ActionPurchaseRecorded = "purchase_recorded"
	ActionProductCreated   = "product_created"
	ActionProductUpdated   = "product_updated"
	ActionProductDeleted   = "product_deleted"
)

func NewStockUpdate(action string, userID uuid.UUID, changes []StockChange, message string) StockUpdate {
	return StockUpdate{Type: "stock_update", Action: action, Changes: changes, UserID: userID, Message: message}
}
