package upload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swipe-aide/swipe-aide/internal/extraction"
	"github.com/swipe-aide/swipe-aide/internal/raster"
	"github.com/swipe-aide/swipe-aide/internal/records"
)

// Rasterizer converts one uploaded document into page images.
type Rasterizer interface {
	Rasterize(data []byte, contentType string) ([]raster.Image, error)
}

// RecordStore receives validated records once a document fully succeeds. The
// delete operations exist so a mid-dispatch store failure can unwind records
// already stored for the same document.
type RecordStore interface {
	AddInvoice(invoice *records.Invoice) error
	AddProduct(product *records.Product) error
	AddCustomer(customer *records.Customer) error

	DeleteInvoice(id string) error
	DeleteProduct(id string) error
	DeleteCustomer(id string) error
}

// defaultRasterizer adapts the raster package to the Rasterizer interface.
type defaultRasterizer struct{}

func (defaultRasterizer) Rasterize(data []byte, contentType string) ([]raster.Image, error) {
	return raster.Rasterize(data, contentType)
}

// Pipeline drives one document through rasterization, extraction, and
// validation, and dispatches the resulting records to the store.
type Pipeline struct {
	rasterizer Rasterizer
	extractor  extraction.Extractor
	store      RecordStore
}

// NewPipeline creates a Pipeline using the package rasterizer.
func NewPipeline(extractor extraction.Extractor, store RecordStore) *Pipeline {
	return NewPipelineWithDeps(defaultRasterizer{}, extractor, store)
}

// NewPipelineWithDeps creates a Pipeline with custom dependencies for testing
func NewPipelineWithDeps(rasterizer Rasterizer, extractor extraction.Extractor, store RecordStore) *Pipeline {
	return &Pipeline{
		rasterizer: rasterizer,
		extractor:  extractor,
		store:      store,
	}
}

// ProcessDocument runs every page of the document through the extractor and
// validator. Pages are processed sequentially in page order; a failed page
// does not stop the remaining pages, but records only reach the store when
// every page succeeded. One failed page fails the whole document.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc Document, progress func(int)) (string, error) {
	images, err := p.rasterizer.Rasterize(doc.Data, doc.ContentType)
	if err != nil {
		return "", fmt.Errorf("rasterizing %s: %w", doc.Filename, err)
	}
	progress(10)

	results := make([]*extraction.Result, 0, len(images))
	failed := 0
	for i, img := range images {
		result, err := p.extractPage(ctx, img)
		if err != nil {
			slog.Error("page extraction failed",
				"filename", doc.Filename,
				"page", img.Page,
				"error", err,
			)
			failed++
		} else {
			results = append(results, result)
		}
		// The model call is not incrementally observable, so progress is
		// approximated per completed page.
		progress(10 + (i+1)*85/len(images))
	}

	if failed > 0 {
		return "", fmt.Errorf("%d of %d page(s) failed extraction", failed, len(images))
	}

	var stored storedRecords
	for _, result := range results {
		if err := p.dispatch(result, &stored); err != nil {
			p.rollback(&stored)
			return "", fmt.Errorf("storing records for %s: %w", doc.Filename, err)
		}
	}

	return fmt.Sprintf("%d page(s) processed, %d record(s) extracted", len(images), stored.count()), nil
}

// extractPage runs one raster image through the model and the validator.
func (p *Pipeline) extractPage(ctx context.Context, img raster.Image) (*extraction.Result, error) {
	rawText, err := p.extractor.Extract(ctx, img.Data, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extracting: %w", err)
	}

	result, err := extraction.Validate(rawText)
	if err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	return result, nil
}

// storedRecords tracks what dispatch has handed to the store so a later
// failure for the same document can unwind it.
type storedRecords struct {
	invoices  []*records.Invoice
	products  []*records.Product
	customers []*records.Customer
}

func (s *storedRecords) count() int {
	return len(s.invoices) + len(s.products) + len(s.customers)
}

// dispatch fans one validated result out to the record store, one call per
// record. Entities where the model read nothing are skipped. Successfully
// stored records are appended to stored; the service assigns their IDs.
func (p *Pipeline) dispatch(result *extraction.Result, stored *storedRecords) error {
	if inv := result.Invoice; anyValue(inv.SerialNumber, inv.CustomerName, inv.ProductName, inv.Date) ||
		anyValue(inv.Quantity, inv.Tax, inv.TotalAmount) {
		record := &records.Invoice{
			SerialNumber: inv.SerialNumber,
			CustomerName: inv.CustomerName,
			ProductName:  inv.ProductName,
			Quantity:     inv.Quantity,
			Tax:          inv.Tax,
			TotalAmount:  inv.TotalAmount,
			Date:         inv.Date,
		}
		if err := p.store.AddInvoice(record); err != nil {
			return err
		}
		stored.invoices = append(stored.invoices, record)
	}

	if prod := result.Product; anyValue(prod.Name) ||
		anyValue(prod.Quantity, prod.UnitPrice, prod.Tax, prod.PriceWithTax, prod.Discount) {
		record := &records.Product{
			Name:         prod.Name,
			Quantity:     prod.Quantity,
			UnitPrice:    prod.UnitPrice,
			Tax:          prod.Tax,
			PriceWithTax: prod.PriceWithTax,
			Discount:     prod.Discount,
		}
		if err := p.store.AddProduct(record); err != nil {
			return err
		}
		stored.products = append(stored.products, record)
	}

	if cust := result.Customer; anyValue(cust.Name) ||
		anyValue(cust.PhoneNumber, cust.TotalPurchaseAmount) {
		record := &records.Customer{
			Name:                cust.Name,
			PhoneNumber:         cust.PhoneNumber,
			TotalPurchaseAmount: cust.TotalPurchaseAmount,
		}
		if err := p.store.AddCustomer(record); err != nil {
			return err
		}
		stored.customers = append(stored.customers, record)
	}

	return nil
}

// rollback deletes records stored for a document that ultimately failed, so
// an errored item leaves nothing behind. Best effort: a record that cannot
// be deleted is logged and skipped.
func (p *Pipeline) rollback(stored *storedRecords) {
	for _, inv := range stored.invoices {
		if err := p.store.DeleteInvoice(inv.ID); err != nil {
			slog.Warn("could not roll back invoice", "id", inv.ID, "error", err)
		}
	}
	for _, prod := range stored.products {
		if err := p.store.DeleteProduct(prod.ID); err != nil {
			slog.Warn("could not roll back product", "id", prod.ID, "error", err)
		}
	}
	for _, cust := range stored.customers {
		if err := p.store.DeleteCustomer(cust.ID); err != nil {
			slog.Warn("could not roll back customer", "id", cust.ID, "error", err)
		}
	}
}

// anyValue reports whether at least one of the nullable fields is set.
func anyValue[T any](fields ...*T) bool {
	for _, f := range fields {
		if f != nil {
			return true
		}
	}
	return false
}
