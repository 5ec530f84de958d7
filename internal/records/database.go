package records

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	invoiceBucketName  = "invoices"
	productBucketName  = "products"
	customerBucketName = "customers"
)

// DB defines the interface for record persistence
type DB interface {
	SaveInvoice(invoice *Invoice) error
	GetInvoice(id string) (*Invoice, error)
	ListInvoices() ([]*Invoice, error)
	DeleteInvoice(id string) error

	SaveProduct(product *Product) error
	GetProduct(id string) (*Product, error)
	ListProducts() ([]*Product, error)
	DeleteProduct(id string) error

	SaveCustomer(customer *Customer) error
	GetCustomer(id string) (*Customer, error)
	ListCustomers() ([]*Customer, error)
	DeleteCustomer(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{invoiceBucketName, productBucketName, customerBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// put marshals a record into its bucket keyed by id.
func (b *BoltDB) put(bucket, id string, record any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return tx.Bucket([]byte(bucket)).Put([]byte(id), data)
	})
}

// get unmarshals a record by id into out.
func (b *BoltDB) get(bucket, id string, out any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("record not found: %s", id)
		}
		return json.Unmarshal(data, out)
	})
}

// delete removes a record by id, failing if it does not exist.
func (b *BoltDB) delete(bucket, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt.Get([]byte(id)) == nil {
			return fmt.Errorf("record not found: %s", id)
		}
		return bkt.Delete([]byte(id))
	})
}

// SaveInvoice saves an invoice record
func (b *BoltDB) SaveInvoice(invoice *Invoice) error {
	return b.put(invoiceBucketName, invoice.ID, invoice)
}

// GetInvoice retrieves an invoice record by ID
func (b *BoltDB) GetInvoice(id string) (*Invoice, error) {
	var invoice Invoice
	if err := b.get(invoiceBucketName, id, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListInvoices returns all invoice records
func (b *BoltDB) ListInvoices() ([]*Invoice, error) {
	invoices := make([]*Invoice, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(invoiceBucketName)).ForEach(func(k, v []byte) error {
			var invoice Invoice
			if err := json.Unmarshal(v, &invoice); err != nil {
				return fmt.Errorf("unmarshaling invoice: %w", err)
			}
			invoices = append(invoices, &invoice)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice record
func (b *BoltDB) DeleteInvoice(id string) error {
	return b.delete(invoiceBucketName, id)
}

// SaveProduct saves a product record
func (b *BoltDB) SaveProduct(product *Product) error {
	return b.put(productBucketName, product.ID, product)
}

// GetProduct retrieves a product record by ID
func (b *BoltDB) GetProduct(id string) (*Product, error) {
	var product Product
	if err := b.get(productBucketName, id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns all product records
func (b *BoltDB) ListProducts() ([]*Product, error) {
	products := make([]*Product, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(productBucketName)).ForEach(func(k, v []byte) error {
			var product Product
			if err := json.Unmarshal(v, &product); err != nil {
				return fmt.Errorf("unmarshaling product: %w", err)
			}
			products = append(products, &product)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteProduct removes a product record
func (b *BoltDB) DeleteProduct(id string) error {
	return b.delete(productBucketName, id)
}

// SaveCustomer saves a customer record
func (b *BoltDB) SaveCustomer(customer *Customer) error {
	return b.put(customerBucketName, customer.ID, customer)
}

// GetCustomer retrieves a customer record by ID
func (b *BoltDB) GetCustomer(id string) (*Customer, error) {
	var customer Customer
	if err := b.get(customerBucketName, id, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListCustomers returns all customer records
func (b *BoltDB) ListCustomers() ([]*Customer, error) {
	customers := make([]*Customer, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(customerBucketName)).ForEach(func(k, v []byte) error {
			var customer Customer
			if err := json.Unmarshal(v, &customer); err != nil {
				return fmt.Errorf("unmarshaling customer: %w", err)
			}
			customers = append(customers, &customer)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// DeleteCustomer removes a customer record
func (b *BoltDB) DeleteCustomer(id string) error {
	return b.delete(customerBucketName, id)
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
