package upload

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/swipe-aide/swipe-aide/internal/raster"
	"github.com/swipe-aide/swipe-aide/internal/records"
)

// mockRasterizer is a mock implementation of Rasterizer
type mockRasterizer struct {
	images []raster.Image
	err    error
}

func (m *mockRasterizer) Rasterize(data []byte, contentType string) ([]raster.Image, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.images, nil
}

// mockExtractor is a mock implementation of extraction.Extractor
type mockExtractor struct {
	replies    map[int]string
	errForPage map[int]error
	calls      int
}

func (m *mockExtractor) Extract(ctx context.Context, imageData []byte, contentType string) (string, error) {
	m.calls++
	if err := m.errForPage[m.calls]; err != nil {
		return "", err
	}
	if reply, ok := m.replies[m.calls]; ok {
		return reply, nil
	}
	return validModelReply, nil
}

func (m *mockExtractor) Close() error {
	return nil
}

// mockRecordStore is a mock implementation of RecordStore. Add assigns
// sequential IDs the way the record service does.
type mockRecordStore struct {
	invoices  []*records.Invoice
	products  []*records.Product
	customers []*records.Customer

	addErr            error // fails every add
	productErr        error // fails AddProduct only
	failProductOnCall int   // fails the n-th AddProduct when set

	nextID       int
	productCalls int
}

func (m *mockRecordStore) id() string {
	m.nextID++
	return fmt.Sprintf("rec-%d", m.nextID)
}

func (m *mockRecordStore) AddInvoice(invoice *records.Invoice) error {
	if m.addErr != nil {
		return m.addErr
	}
	invoice.ID = m.id()
	m.invoices = append(m.invoices, invoice)
	return nil
}

func (m *mockRecordStore) AddProduct(product *records.Product) error {
	m.productCalls++
	if m.addErr != nil {
		return m.addErr
	}
	if m.productErr != nil {
		return m.productErr
	}
	if m.failProductOnCall != 0 && m.productCalls == m.failProductOnCall {
		return errors.New("product store failed")
	}
	product.ID = m.id()
	m.products = append(m.products, product)
	return nil
}

func (m *mockRecordStore) AddCustomer(customer *records.Customer) error {
	if m.addErr != nil {
		return m.addErr
	}
	customer.ID = m.id()
	m.customers = append(m.customers, customer)
	return nil
}

func (m *mockRecordStore) DeleteInvoice(id string) error {
	for i, inv := range m.invoices {
		if inv.ID == id {
			m.invoices = append(m.invoices[:i], m.invoices[i+1:]...)
			return nil
		}
	}
	return errors.New("invoice not found")
}

func (m *mockRecordStore) DeleteProduct(id string) error {
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return errors.New("product not found")
}

func (m *mockRecordStore) DeleteCustomer(id string) error {
	for i, c := range m.customers {
		if c.ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return errors.New("customer not found")
}

const validModelReply = `{
	"invoice": {"serialNumber": "INV-2024-001", "customerName": "Acme Corp", "productName": "Office Supplies", "quantity": 5, "tax": 10.5, "totalAmount": 110.5, "date": "2024-03-20"},
	"product": {"name": "Office Supplies", "quantity": 5, "unitPrice": 20, "tax": 10, "priceWithTax": 110, "discount": 5},
	"customer": {"name": "John Doe", "phoneNumber": 1234567890, "totalPurchaseAmount": 110.5}
}`

const allNullModelReply = `{
	"invoice": {"serialNumber": null, "customerName": null, "productName": null, "quantity": null, "tax": null, "totalAmount": null, "date": null},
	"product": {"name": null, "quantity": null, "unitPrice": null, "tax": null, "priceWithTax": null, "discount": null},
	"customer": {"name": null, "phoneNumber": null, "totalPurchaseAmount": null}
}`

func pages(n int) []raster.Image {
	images := make([]raster.Image, n)
	for i := range images {
		images[i] = raster.Image{Data: []byte(fmt.Sprintf("page %d", i+1)), ContentType: "image/png", Page: i + 1}
	}
	return images
}

var _ = Describe("Pipeline", func() {
	var (
		rasterizer *mockRasterizer
		extractor  *mockExtractor
		store      *mockRecordStore
		pipeline   *Pipeline

		document    Document
		progressLog []int
		description string
		err         error
	)

	BeforeEach(func() {
		rasterizer = &mockRasterizer{images: pages(1)}
		extractor = &mockExtractor{replies: map[int]string{}, errForPage: map[int]error{}}
		store = &mockRecordStore{}
		pipeline = NewPipelineWithDeps(rasterizer, extractor, store)
		document = doc("invoice.pdf")
		progressLog = nil
	})

	JustBeforeEach(func() {
		description, err = pipeline.ProcessDocument(context.Background(), document, func(p int) {
			progressLog = append(progressLog, p)
		})
	})

	When("a single-page document succeeds", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should dispatch one record of each kind", func() {
			Expect(store.invoices).To(HaveLen(1))
			Expect(store.products).To(HaveLen(1))
			Expect(store.customers).To(HaveLen(1))
		})

		It("should carry the extracted fields onto the records", func() {
			Expect(store.invoices[0].SerialNumber).To(HaveValue(Equal("INV-2024-001")))
			Expect(store.customers[0].Name).To(HaveValue(Equal("John Doe")))
		})

		It("should summarize the outcome", func() {
			Expect(description).To(Equal("1 page(s) processed, 3 record(s) extracted"))
		})

		It("should report monotonically increasing progress", func() {
			Expect(progressLog).NotTo(BeEmpty())
			for i := 1; i < len(progressLog); i++ {
				Expect(progressLog[i]).To(BeNumerically(">=", progressLog[i-1]))
			}
			Expect(progressLog[len(progressLog)-1]).To(BeNumerically("<=", 100))
		})
	})

	When("a three-page document fully succeeds", func() {
		BeforeEach(func() {
			rasterizer.images = pages(3)
		})

		It("should extract every page", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(extractor.calls).To(Equal(3))
			Expect(store.invoices).To(HaveLen(3))
		})
	})

	When("page 2 of 3 fails extraction", func() {
		BeforeEach(func() {
			rasterizer.images = pages(3)
			extractor.errForPage[2] = errors.New("model call failed")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should still attempt the remaining pages", func() {
			Expect(extractor.calls).To(Equal(3))
		})

		It("should dispatch nothing to the store", func() {
			Expect(store.invoices).To(BeEmpty())
			Expect(store.products).To(BeEmpty())
			Expect(store.customers).To(BeEmpty())
		})
	})

	When("a page returns invalid JSON", func() {
		BeforeEach(func() {
			extractor.replies[1] = "not json at all"
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should dispatch nothing to the store", func() {
			Expect(store.invoices).To(BeEmpty())
		})
	})

	When("the model reads nothing from a page", func() {
		BeforeEach(func() {
			extractor.replies[1] = allNullModelReply
		})

		It("should complete without dispatching empty records", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(store.invoices).To(BeEmpty())
			Expect(store.products).To(BeEmpty())
			Expect(store.customers).To(BeEmpty())
			Expect(description).To(Equal("1 page(s) processed, 0 record(s) extracted"))
		})
	})

	When("rasterization fails", func() {
		BeforeEach(func() {
			rasterizer.err = errors.New("rendering PDF page 1: broken")
		})

		It("returns the error without calling the extractor", func() {
			Expect(err).To(HaveOccurred())
			Expect(extractor.calls).To(Equal(0))
		})
	})

	When("the store rejects a record", func() {
		BeforeEach(func() {
			store.addErr = errors.New("database closed")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the store rejects the product after storing the invoice", func() {
		BeforeEach(func() {
			store.productErr = errors.New("product store failed")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should roll back the already-stored invoice", func() {
			Expect(store.invoices).To(BeEmpty())
			Expect(store.products).To(BeEmpty())
			Expect(store.customers).To(BeEmpty())
		})
	})

	When("page 2's dispatch fails after page 1's records were stored", func() {
		BeforeEach(func() {
			rasterizer.images = pages(2)
			store.failProductOnCall = 2
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should roll back every record of the document", func() {
			Expect(store.invoices).To(BeEmpty())
			Expect(store.products).To(BeEmpty())
			Expect(store.customers).To(BeEmpty())
		})
	})
})
