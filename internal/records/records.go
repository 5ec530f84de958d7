package records

import "time"

// Invoice is one extracted invoice row. Extraction fields are nullable
// because the model returns null for anything it cannot read; users fill the
// gaps by editing records through the API.
type Invoice struct {
	ID           string    `json:"id"`
	SerialNumber *string   `json:"serialNumber"`
	CustomerName *string   `json:"customerName"`
	ProductName  *string   `json:"productName"`
	Quantity     *float64  `json:"quantity"`
	Tax          *float64  `json:"tax"`
	TotalAmount  *float64  `json:"totalAmount"`
	Date         *string   `json:"date"` // YYYY-MM-DD
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Product is one extracted product row.
type Product struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name"`
	Quantity     *float64  `json:"quantity"`
	UnitPrice    *float64  `json:"unitPrice"`
	Tax          *float64  `json:"tax"`
	PriceWithTax *float64  `json:"priceWithTax"`
	Discount     *float64  `json:"discount"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Customer is one extracted customer row.
type Customer struct {
	ID                  string    `json:"id"`
	Name                *string   `json:"name"`
	PhoneNumber         *float64  `json:"phoneNumber"`
	TotalPurchaseAmount *float64  `json:"totalPurchaseAmount"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
