package extraction

import (
	"context"
	"errors"
)

// ErrInvalidInput is returned when an extractor is handed something that is
// not a raster image.
var ErrInvalidInput = errors.New("input is not a raster image")

// Invoice holds the invoice-level fields extracted from one image. Every
// field is independently nullable; the model returns null for anything it
// cannot read.
type Invoice struct {
	SerialNumber *string  `json:"serialNumber"`
	CustomerName *string  `json:"customerName"`
	ProductName  *string  `json:"productName"`
	Quantity     *float64 `json:"quantity"`
	Tax          *float64 `json:"tax"`
	TotalAmount  *float64 `json:"totalAmount"`
	Date         *string  `json:"date"`
}

// Product holds the product-level fields extracted from one image.
type Product struct {
	Name         *string  `json:"name"`
	Quantity     *float64 `json:"quantity"`
	UnitPrice    *float64 `json:"unitPrice"`
	Tax          *float64 `json:"tax"`
	PriceWithTax *float64 `json:"priceWithTax"`
	Discount     *float64 `json:"discount"`
}

// Customer holds the customer-level fields extracted from one image.
type Customer struct {
	Name                *string  `json:"name"`
	PhoneNumber         *float64 `json:"phoneNumber"`
	TotalPurchaseAmount *float64 `json:"totalPurchaseAmount"`
}

// Result is the validated extraction output for one raster image.
type Result struct {
	Invoice  Invoice  `json:"invoice"`
	Product  Product  `json:"product"`
	Customer Customer `json:"customer"`
}

// Extractor sends a single raster image plus the extraction prompt to a
// vision model and returns the raw text reply. The reply is untrusted and
// must go through Validate before anything downstream touches it.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the extractor and releases resources
	Close() error
}
