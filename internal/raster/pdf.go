package raster

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// rasterizePDF renders every page of a PDF to a PNG image, preserving page
// order. go-fitz renders at 300 DPI, which keeps small invoice text legible
// for the vision model.
func rasterizePDF(pdfData []byte) ([]Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	images := make([]Image, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding page %d as PNG: %w", n+1, err)
		}

		images = append(images, Image{
			Data:        buf.Bytes(),
			ContentType: "image/png",
			Page:        n + 1,
		})
	}

	return images, nil
}
