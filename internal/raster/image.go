package raster

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/heic"
)

// heicToPNG decodes a HEIC/HEIF photo and re-encodes it as PNG. Go's standard
// image package doesn't support HEIC, and neither do the vision models.
func heicToPNG(data []byte) ([]byte, error) {
	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks for the HEIC/HEIF ftyp box at the start of the data.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
