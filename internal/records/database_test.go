package records

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("invoices", func() {
		var invoice *Invoice

		BeforeEach(func() {
			invoice = &Invoice{
				ID:           "inv-1",
				SerialNumber: strPtr("INV-2024-001"),
				CustomerName: strPtr("Acme Corp"),
				TotalAmount:  numPtr(110.50),
				Date:         strPtr("2024-03-20"),
				CreatedAt:    time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC),
				UpdatedAt:    time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC),
			}
			Expect(db.SaveInvoice(invoice)).To(Succeed())
		})

		It("should round-trip an invoice", func() {
			got, err := db.GetInvoice("inv-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(invoice))
		})

		It("should preserve null fields", func() {
			got, err := db.GetInvoice("inv-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Quantity).To(BeNil())
			Expect(got.Tax).To(BeNil())
		})

		It("should list saved invoices", func() {
			invoices, err := db.ListInvoices()
			Expect(err).NotTo(HaveOccurred())
			Expect(invoices).To(HaveLen(1))
		})

		It("should delete an invoice", func() {
			Expect(db.DeleteInvoice("inv-1")).To(Succeed())
			_, err := db.GetInvoice("inv-1")
			Expect(err).To(HaveOccurred())
		})

		It("should fail to get a missing invoice", func() {
			_, err := db.GetInvoice("nonexistent")
			Expect(err).To(HaveOccurred())
		})

		It("should fail to delete a missing invoice", func() {
			Expect(db.DeleteInvoice("nonexistent")).To(HaveOccurred())
		})
	})

	Describe("products", func() {
		It("should round-trip a product", func() {
			product := &Product{
				ID:        "prod-1",
				Name:      strPtr("Office Supplies"),
				UnitPrice: numPtr(20.00),
			}
			Expect(db.SaveProduct(product)).To(Succeed())

			got, err := db.GetProduct("prod-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(product))
		})
	})

	Describe("customers", func() {
		It("should round-trip a customer", func() {
			customer := &Customer{
				ID:          "cust-1",
				Name:        strPtr("John Doe"),
				PhoneNumber: numPtr(1234567890),
			}
			Expect(db.SaveCustomer(customer)).To(Succeed())

			got, err := db.GetCustomer("cust-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(customer))
		})

		It("should list customers independently of other buckets", func() {
			Expect(db.SaveCustomer(&Customer{ID: "cust-1"})).To(Succeed())
			Expect(db.SaveInvoice(&Invoice{ID: "inv-1"})).To(Succeed())

			customers, err := db.ListCustomers()
			Expect(err).NotTo(HaveOccurred())
			Expect(customers).To(HaveLen(1))
		})
	})

	Describe("reopening the database", func() {
		It("should keep saved records", func() {
			Expect(db.SaveInvoice(&Invoice{ID: "inv-1"})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			invoices, err := db.ListInvoices()
			Expect(err).NotTo(HaveOccurred())
			Expect(invoices).To(HaveLen(1))
		})
	})
})
