package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/swipe-aide/swipe-aide/internal/records"
	"github.com/swipe-aide/swipe-aide/internal/upload"
)

// maxUploadSize bounds one multipart request. Phone photos of invoices run
// large, so 50MB rather than the usual 10.
const maxUploadSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// writeJSON writes a JSON response body with the given status
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// handleEnqueueUploads accepts one or more files and appends them to the
// processing queue. Enqueueing never starts processing on its own.
func (s *Server) handleEnqueueUploads(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		message := "Error parsing form"
		if err.Error() == "http: request body too large" {
			message = "Upload is too large. Maximum size is 50MB."
		}
		jsonError(w, message, http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		jsonError(w, "No files were selected. Please choose at least one file to upload.", http.StatusBadRequest)
		return
	}

	docs := make([]upload.Document, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			slog.Error("Error opening uploaded file", "filename", header.Filename, "error", err)
			jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("Error reading file data", "filename", header.Filename, "error", err)
			jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
			return
		}

		docs = append(docs, upload.Document{
			Filename:    header.Filename,
			ContentType: contentTypeFor(header.Header.Get("Content-Type"), header.Filename),
			Data:        data,
		})
	}

	items := s.uploads.Enqueue(docs...)
	writeJSON(w, http.StatusCreated, items)
}

// handleStartUploads begins draining the queue. The drain outlives this
// request, so it must not inherit the request context: net/http cancels it
// the moment the handler returns.
func (s *Server) handleStartUploads(w http.ResponseWriter, r *http.Request) {
	s.uploads.Start(context.WithoutCancel(r.Context()))
	w.WriteHeader(http.StatusAccepted)
}

// handleListUploads returns a snapshot of the queue
func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.uploads.Items())
}

// handleRemoveUpload removes a queued item unless it is mid-flight
func (s *Server) handleRemoveUpload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Item ID required", http.StatusBadRequest)
		return
	}

	switch err := s.uploads.Remove(id); {
	case errors.Is(err, upload.ErrItemProcessing):
		jsonError(w, "Cannot remove an item while it is processing", http.StatusConflict)
	case errors.Is(err, upload.ErrItemNotFound):
		corsError(w, "Item not found", http.StatusNotFound)
	case err != nil:
		slog.Error("Error removing item", "id", id, "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleClearUploads removes all completed and errored items
func (s *Server) handleClearUploads(w http.ResponseWriter, r *http.Request) {
	removed := s.uploads.ClearTerminal()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleListInvoices returns all invoice records
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.records.ListInvoices()
	if err != nil {
		slog.Error("Error listing invoices", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// handleUpdateInvoice replaces the editable fields of an invoice
func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var update records.Invoice
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invoice, err := s.records.UpdateInvoice(r.PathValue("id"), &update)
	if err != nil {
		corsError(w, "Invoice not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// handleDeleteInvoice deletes an invoice record
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteInvoice(r.PathValue("id")); err != nil {
		corsError(w, "Invoice not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListProducts returns all product records
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.records.ListProducts()
	if err != nil {
		slog.Error("Error listing products", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleUpdateProduct replaces the editable fields of a product
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var update records.Product
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := s.records.UpdateProduct(r.PathValue("id"), &update)
	if err != nil {
		corsError(w, "Product not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// handleDeleteProduct deletes a product record
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteProduct(r.PathValue("id")); err != nil {
		corsError(w, "Product not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListCustomers returns all customer records
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.records.ListCustomers()
	if err != nil {
		slog.Error("Error listing customers", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// handleUpdateCustomer replaces the editable fields of a customer
func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var update records.Customer
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	customer, err := s.records.UpdateCustomer(r.PathValue("id"), &update)
	if err != nil {
		corsError(w, "Customer not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// handleDeleteCustomer deletes a customer record
func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteCustomer(r.PathValue("id")); err != nil {
		corsError(w, "Customer not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport returns an XLSX workbook of all records
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	workbook, err := s.records.ExportWorkbook()
	if err != nil {
		slog.Error("Error exporting workbook", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="swipe-aide-records.xlsx"`)
	w.Write(workbook)
}

// contentTypeFor falls back to the file extension when the multipart header
// has no usable content type.
func contentTypeFor(declared, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(declared))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}
