package records

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportWorkbook returns an XLSX workbook with one sheet per record type.
func (s *Service) ExportWorkbook() ([]byte, error) {
	invoices, err := s.ListInvoices()
	if err != nil {
		return nil, err
	}
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}
	customers, err := s.ListCustomers()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	invoiceRows := make([][]any, 0, len(invoices))
	for _, inv := range invoices {
		invoiceRows = append(invoiceRows, []any{
			inv.ID, cell(inv.SerialNumber), cell(inv.CustomerName), cell(inv.ProductName),
			cell(inv.Quantity), cell(inv.Tax), cell(inv.TotalAmount), cell(inv.Date),
		})
	}
	if err := writeSheet(f, "Invoices",
		[]string{"ID", "Serial Number", "Customer", "Product", "Quantity", "Tax", "Total Amount", "Date"},
		invoiceRows); err != nil {
		return nil, err
	}

	productRows := make([][]any, 0, len(products))
	for _, p := range products {
		productRows = append(productRows, []any{
			p.ID, cell(p.Name), cell(p.Quantity), cell(p.UnitPrice),
			cell(p.Tax), cell(p.PriceWithTax), cell(p.Discount),
		})
	}
	if err := writeSheet(f, "Products",
		[]string{"ID", "Name", "Quantity", "Unit Price", "Tax", "Price With Tax", "Discount"},
		productRows); err != nil {
		return nil, err
	}

	customerRows := make([][]any, 0, len(customers))
	for _, c := range customers {
		customerRows = append(customerRows, []any{
			c.ID, cell(c.Name), cell(c.PhoneNumber), cell(c.TotalPurchaseAmount),
		})
	}
	if err := writeSheet(f, "Customers",
		[]string{"ID", "Name", "Phone Number", "Total Purchase Amount"},
		customerRows); err != nil {
		return nil, err
	}

	// excelize creates a default "Sheet1"; drop it so the workbook opens on
	// the invoices sheet.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("removing default sheet: %w", err)
		}
	}
	if index, err := f.GetSheetIndex("Invoices"); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet creates a sheet and fills it with a header row plus data rows.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}

	for i, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellName, h); err != nil {
			return fmt.Errorf("writing header %q: %w", h, err)
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cellName, value); err != nil {
				return fmt.Errorf("writing row %d: %w", r+1, err)
			}
		}
	}

	return nil
}

// cell unwraps a nullable field for excelize; nil stays an empty cell.
func cell[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
