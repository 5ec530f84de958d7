package extraction

// extractionPrompt is the shared instruction sent alongside each raster
// image. It pins down the exact JSON shape and the normalization rules the
// validator expects: null for missing fields, currency symbols stripped,
// 2-decimal rounding, YYYY-MM-DD dates, de-punctuated identifiers.
const extractionPrompt = `Analyze the provided invoice image and extract data according to these specifications:

REQUIRED OUTPUT FORMAT:
{
    "invoice": {
        "serialNumber": string,    // Invoice ID/Number
        "customerName": string,    // Customer/Business name
        "productName": string,     // Product/Service name
        "quantity": number,        // Total quantity
        "tax": number,             // Tax amount
        "totalAmount": number,     // Total including tax
        "date": string             // Format: YYYY-MM-DD
    },
    "product": {
        "name": string,            // Product name
        "quantity": number,        // Product quantity
        "unitPrice": number,       // Product per unit price
        "tax": number,             // Product tax
        "priceWithTax": number,    // Product amount with tax
        "discount": number         // Product discount
    },
    "customer": {
        "name": string,                  // Customer name
        "phoneNumber": number,           // Customer phone number
        "totalPurchaseAmount": number    // Customer total amount purchased
    }
}

EXTRACTION RULES:
1. Data Types:
    - Null Values: Use null for missing fields.
    - Monetary Values: Convert all monetary values to numbers, removing currency symbols (e.g., "$10.50" becomes 10.50).
    - Rounding: Round all monetary values to 2 decimal places for consistency.
    - Date Format: Ensure dates are in the format YYYY-MM-DD. If missing or invalid, use null.
2. Text Processing:
    - Special Characters: Remove special characters such as punctuation marks from text fields.
    - Preserve Case: Preserve the original case for names and descriptions.
    - Whitespace: Strip leading and trailing whitespace from text fields.
3. Numerical Processing:
    - Quantities must be plain numbers (e.g., "5" becomes 5).
    - Prices and amounts must be numbers (e.g., "100.50" becomes 100.50).
    - Remove thousand separators (e.g., "1,000" becomes 1000).
4. Validation:
    - The invoice serial number must not contain special characters like slashes.
    - All date fields must be YYYY-MM-DD; if invalid or missing, use null.

Return ONLY valid JSON in the exact format above.
Do not include any text before or after the JSON.
Do not use markdown code blocks.`
