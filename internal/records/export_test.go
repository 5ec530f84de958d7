package records

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("ExportWorkbook", func() {
	var (
		db      *mockDB
		service *Service
		data    []byte
		err     error
	)

	BeforeEach(func() {
		db = newMockDB()
		service = NewServiceWithDeps(db, &mockIDGenerator{id: "id-1"}, &mockTimeSource{now: time.Now()})
	})

	JustBeforeEach(func() {
		data, err = service.ExportWorkbook()
	})

	When("records of each kind exist", func() {
		BeforeEach(func() {
			db.invoices["inv-1"] = &Invoice{
				ID:           "inv-1",
				SerialNumber: strPtr("INV-2024-001"),
				TotalAmount:  numPtr(110.50),
			}
			db.products["prod-1"] = &Product{ID: "prod-1", Name: strPtr("Office Supplies")}
			db.customers["cust-1"] = &Customer{ID: "cust-1", Name: strPtr("John Doe")}
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should produce a workbook with one sheet per record type", func() {
			f, openErr := excelize.OpenReader(bytes.NewReader(data))
			Expect(openErr).NotTo(HaveOccurred())
			defer f.Close()
			Expect(f.GetSheetList()).To(ConsistOf("Invoices", "Products", "Customers"))
		})

		It("should write the invoice rows under a header", func() {
			f, openErr := excelize.OpenReader(bytes.NewReader(data))
			Expect(openErr).NotTo(HaveOccurred())
			defer f.Close()

			rows, rowErr := f.GetRows("Invoices")
			Expect(rowErr).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0][0]).To(Equal("ID"))
			Expect(rows[1][0]).To(Equal("inv-1"))
			Expect(rows[1][1]).To(Equal("INV-2024-001"))
		})
	})

	When("no records exist", func() {
		It("should still produce a workbook with header rows", func() {
			Expect(err).NotTo(HaveOccurred())

			f, openErr := excelize.OpenReader(bytes.NewReader(data))
			Expect(openErr).NotTo(HaveOccurred())
			defer f.Close()

			rows, rowErr := f.GetRows("Customers")
			Expect(rowErr).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})
	})
})
