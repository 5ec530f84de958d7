package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/xuri/excelize/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Bounds on the rendered grid. Invoices exported as spreadsheets are small;
// anything beyond this is cropped rather than rendered into a huge image.
const (
	maxSheetRows = 100
	maxSheetCols = 26
)

const (
	cellPaddingPx = 8
	rowHeightPx   = 20
	charWidthPx   = 7 // basicfont.Face7x13 advance
)

// rasterizeSheet renders the first sheet of a workbook as a single snapshot
// image: a plain text grid with cell borders, no pagination.
func rasterizeSheet(data []byte) ([]Image, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	img := drawGrid(clampGrid(rows))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding sheet snapshot: %w", err)
	}

	return []Image{{Data: buf.Bytes(), ContentType: "image/png", Page: 1}}, nil
}

// clampGrid trims the cell grid to the renderable bounds.
func clampGrid(rows [][]string) [][]string {
	if len(rows) > maxSheetRows {
		rows = rows[:maxSheetRows]
	}
	clamped := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > maxSheetCols {
			row = row[:maxSheetCols]
		}
		clamped[i] = row
	}
	return clamped
}

// drawGrid renders the cell values into a white image with gray cell borders
// and black text, sized to fit the widest value in each column.
func drawGrid(rows [][]string) image.Image {
	widths := columnWidths(rows)

	totalWidth := 1
	for _, w := range widths {
		totalWidth += w + 1
	}
	totalHeight := len(rows)*(rowHeightPx+1) + 1
	if totalWidth < 120 {
		totalWidth = 120
	}
	if totalHeight < rowHeightPx+2 {
		totalHeight = rowHeightPx + 2
	}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	gridColor := color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}

	// Horizontal rules.
	for r := 0; r <= len(rows); r++ {
		y := r * (rowHeightPx + 1)
		for x := 0; x < totalWidth; x++ {
			img.Set(x, y, gridColor)
		}
	}

	// Vertical rules.
	x := 0
	for c := 0; c <= len(widths); c++ {
		for y := 0; y < totalHeight; y++ {
			img.Set(x, y, gridColor)
		}
		if c < len(widths) {
			x += widths[c] + 1
		}
	}

	// Cell text.
	for r, row := range rows {
		cellX := 1
		for c, cell := range row {
			drawer.Dot = fixed.P(cellX+cellPaddingPx/2, r*(rowHeightPx+1)+rowHeightPx-5)
			drawer.DrawString(cell)
			cellX += widths[c] + 1
		}
	}

	return img
}

// columnWidths sizes each column to its widest cell value.
func columnWidths(rows [][]string) []int {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	widths := make([]int, cols)
	for _, row := range rows {
		for c, cell := range row {
			w := len(cell)*charWidthPx + cellPaddingPx
			if w > widths[c] {
				widths[c] = w
			}
		}
	}
	for c := range widths {
		if widths[c] < 4*charWidthPx {
			widths[c] = 4 * charWidthPx
		}
	}
	return widths
}
