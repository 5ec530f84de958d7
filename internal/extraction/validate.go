package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resultSchemaJSON is the expected shape of a model reply. Every field has a
// declared permitted type set with null allowed; there is no coercion, so a
// string "5" where a number is expected fails validation. Monetary fields
// must be non-negative and dates must look like YYYY-MM-DD.
const resultSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["invoice", "product", "customer"],
  "properties": {
    "invoice": {
      "type": "object",
      "required": ["serialNumber", "customerName", "productName", "quantity", "tax", "totalAmount", "date"],
      "properties": {
        "serialNumber": {"type": ["string", "null"]},
        "customerName": {"type": ["string", "null"]},
        "productName":  {"type": ["string", "null"]},
        "quantity":     {"type": ["number", "null"], "minimum": 0},
        "tax":          {"type": ["number", "null"], "minimum": 0},
        "totalAmount":  {"type": ["number", "null"], "minimum": 0},
        "date":         {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
      }
    },
    "product": {
      "type": "object",
      "required": ["name", "quantity", "unitPrice", "tax", "priceWithTax", "discount"],
      "properties": {
        "name":         {"type": ["string", "null"]},
        "quantity":     {"type": ["number", "null"], "minimum": 0},
        "unitPrice":    {"type": ["number", "null"], "minimum": 0},
        "tax":          {"type": ["number", "null"], "minimum": 0},
        "priceWithTax": {"type": ["number", "null"], "minimum": 0},
        "discount":     {"type": ["number", "null"], "minimum": 0}
      }
    },
    "customer": {
      "type": "object",
      "required": ["name", "phoneNumber", "totalPurchaseAmount"],
      "properties": {
        "name":                {"type": ["string", "null"]},
        "phoneNumber":         {"type": ["number", "null"]},
        "totalPurchaseAmount": {"type": ["number", "null"], "minimum": 0}
      }
    }
  }
}`

var resultSchema = jsonschema.MustCompileString("result.json", resultSchemaJSON)

// Validate checks a raw model reply against the expected shape and returns
// the typed result. Validation is all-or-nothing: any missing field, type
// mismatch, or unparsable reply rejects the whole image with no partial
// result. The extraction model is unreliable, so this is the only gate
// between its output and the record store.
func Validate(rawText string) (*Result, error) {
	text := stripFences(rawText)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("parsing model reply: %w", err)
	}

	if err := resultSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("reply does not match expected shape: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}

	// The schema pattern only checks the digit layout; reject dates that are
	// not real calendar dates.
	if result.Invoice.Date != nil {
		if _, err := time.Parse("2006-01-02", *result.Invoice.Date); err != nil {
			return nil, fmt.Errorf("invalid invoice date %q: %w", *result.Invoice.Date, err)
		}
	}

	result.normalize()
	return &result, nil
}

// stripFences removes surrounding markdown code-fence markup and trims the
// reply down to the outermost JSON object.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

// normalize rounds monetary values to 2 decimal places.
func (r *Result) normalize() {
	round2(r.Invoice.Tax)
	round2(r.Invoice.TotalAmount)
	round2(r.Product.UnitPrice)
	round2(r.Product.Tax)
	round2(r.Product.PriceWithTax)
	round2(r.Product.Discount)
	round2(r.Customer.TotalPurchaseAmount)
}

func round2(v *float64) {
	if v != nil {
		*v = math.Round(*v*100) / 100
	}
}
