package records

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs for records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates UUID record IDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles record operations
type Service struct {
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB) *Service {
	return &Service{
		db:          db,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// AddInvoice assigns an ID and timestamps to a new invoice and saves it
func (s *Service) AddInvoice(invoice *Invoice) error {
	invoice.ID = s.idGenerator.Generate()
	now := s.timeSource.Now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	if err := s.db.SaveInvoice(invoice); err != nil {
		return fmt.Errorf("saving invoice: %w", err)
	}
	return nil
}

// UpdateInvoice replaces the editable fields of an existing invoice
func (s *Service) UpdateInvoice(id string, update *Invoice) (*Invoice, error) {
	existing, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	existing.SerialNumber = update.SerialNumber
	existing.CustomerName = update.CustomerName
	existing.ProductName = update.ProductName
	existing.Quantity = update.Quantity
	existing.Tax = update.Tax
	existing.TotalAmount = update.TotalAmount
	existing.Date = update.Date
	existing.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveInvoice(existing); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}
	return existing, nil
}

// ListInvoices returns all invoices
func (s *Service) ListInvoices() ([]*Invoice, error) {
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice by ID
func (s *Service) DeleteInvoice(id string) error {
	if err := s.db.DeleteInvoice(id); err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}
	return nil
}

// AddProduct assigns an ID and timestamps to a new product and saves it
func (s *Service) AddProduct(product *Product) error {
	product.ID = s.idGenerator.Generate()
	now := s.timeSource.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.db.SaveProduct(product); err != nil {
		return fmt.Errorf("saving product: %w", err)
	}
	return nil
}

// UpdateProduct replaces the editable fields of an existing product
func (s *Service) UpdateProduct(id string, update *Product) (*Product, error) {
	existing, err := s.db.GetProduct(id)
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}

	existing.Name = update.Name
	existing.Quantity = update.Quantity
	existing.UnitPrice = update.UnitPrice
	existing.Tax = update.Tax
	existing.PriceWithTax = update.PriceWithTax
	existing.Discount = update.Discount
	existing.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveProduct(existing); err != nil {
		return nil, fmt.Errorf("saving product: %w", err)
	}
	return existing, nil
}

// ListProducts returns all products
func (s *Service) ListProducts() ([]*Product, error) {
	products, err := s.db.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// DeleteProduct removes a product by ID
func (s *Service) DeleteProduct(id string) error {
	if err := s.db.DeleteProduct(id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

// AddCustomer assigns an ID and timestamps to a new customer and saves it
func (s *Service) AddCustomer(customer *Customer) error {
	customer.ID = s.idGenerator.Generate()
	now := s.timeSource.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if err := s.db.SaveCustomer(customer); err != nil {
		return fmt.Errorf("saving customer: %w", err)
	}
	return nil
}

// UpdateCustomer replaces the editable fields of an existing customer
func (s *Service) UpdateCustomer(id string, update *Customer) (*Customer, error) {
	existing, err := s.db.GetCustomer(id)
	if err != nil {
		return nil, fmt.Errorf("getting customer: %w", err)
	}

	existing.Name = update.Name
	existing.PhoneNumber = update.PhoneNumber
	existing.TotalPurchaseAmount = update.TotalPurchaseAmount
	existing.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveCustomer(existing); err != nil {
		return nil, fmt.Errorf("saving customer: %w", err)
	}
	return existing, nil
}

// ListCustomers returns all customers
func (s *Service) ListCustomers() ([]*Customer, error) {
	customers, err := s.db.ListCustomers()
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return customers, nil
}

// DeleteCustomer removes a customer by ID
func (s *Service) DeleteCustomer(id string) error {
	if err := s.db.DeleteCustomer(id); err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}
	return nil
}
