package raster

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Image is one rendered page of an uploaded document, ready for a vision model.
type Image struct {
	Data        []byte
	ContentType string
	Page        int
}

// ErrUnsupportedMediaType is returned for file types outside the known set.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

// Rasterize converts an uploaded document into one raster image per page.
// PDFs yield one image per page in page order, spreadsheets yield a single
// snapshot of the first sheet, and raster image types pass through unchanged.
func Rasterize(data []byte, contentType string) ([]Image, error) {
	mediaType := normalizeMediaType(data, contentType)

	switch mediaType {
	case mimePDF:
		return rasterizePDF(data)
	case mimeXLSX, mimeXLS:
		return rasterizeSheet(data)
	case "image/jpeg", "image/png", "image/gif":
		return []Image{{Data: data, ContentType: mediaType, Page: 1}}, nil
	case "image/heic", "image/heif":
		pngData, err := heicToPNG(data)
		if err != nil {
			return nil, fmt.Errorf("converting HEIC to PNG: %w", err)
		}
		return []Image{{Data: pngData, ContentType: "image/png", Page: 1}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

// normalizeMediaType lowercases the declared type, strips parameters, and
// falls back to sniffing the bytes when the declaration is missing or generic.
func normalizeMediaType(data []byte, contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mediaType, ";"); i != -1 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	// HEIC magic bytes win over whatever the client declared, since phones
	// often upload HEIC photos labeled image/jpeg.
	if isHEICFormat(data) {
		return "image/heic"
	}

	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
		if i := strings.Index(mediaType, ";"); i != -1 {
			mediaType = strings.TrimSpace(mediaType[:i])
		}
	}

	return mediaType
}
