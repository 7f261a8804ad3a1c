package checkout

import (
	"time"

	"toko-kelontong-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReceiptLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Receipt is the printable record of one committed sale.
type Receipt struct {
	SaleID          uuid.UUID           `json:"sale_id"`
	StoreName       string              `json:"store_name"`
	Cashier         string              `json:"cashier"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []ReceiptLine       `json:"items"`
	Total           decimal.Decimal     `json:"total"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	PaymentLabel    string              `json:"payment_label"`
	PaymentReceived decimal.Decimal     `json:"payment_received"`
	Change          decimal.Decimal     `json:"change"`
}

// NewReceipt reads line names from each item's Product when it is loaded.
func NewReceipt(sale *model.Sale, storeName, cashier string) Receipt {
	r := Receipt{
		SaleID:          sale.ID,
		StoreName:       storeName,
		Cashier:         cashier,
		CreatedAt:       sale.CreatedAt,
		Items:           make([]ReceiptLine, 0, len(sale.Items)),
		Total:           sale.Total,
		PaymentMethod:   sale.PaymentMethod,
		PaymentLabel:    sale.PaymentMethod.Label(),
		PaymentReceived: sale.PaymentReceived,
		Change:          sale.ChangeAmount,
	}
	if r.Cashier == "" && sale.User != nil {
		r.Cashier = sale.User.FullName
	}
	for _, it := range sale.Items {
		line := ReceiptLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price, Subtotal: it.Subtotal}
		if it.Product != nil {
			line.Name = it.Product.Name
		}
		r.Items = append(r.Items, line)
	}
	return r
}
