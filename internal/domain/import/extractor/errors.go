package extractor

import "errors"

// ErrUnsupportedFormat is returned when the uploaded file is neither a PDF
// nor a CSV variant.
var ErrUnsupportedFormat = errors.New("unsupported file type: upload a PDF or CSV bank statement")

// ErrImageBasedPDF is returned when both the text layer and the OCR fallback
// produced too little text to work with. The message carries the remediation
// steps shown to the user.
var ErrImageBasedPDF = errors.New(
	"this PDF appears to be image-based or scanned and could not be read. " +
		"Please try: 1) export a text-based PDF from your bank, " +
		"2) use CSV export instead, or " +
		"3) copy-paste transactions into a CSV file")

// CSVParseError wraps a malformed-CSV failure. User-facing; the fix is to
// re-export the statement.
type CSVParseError struct {
	Err error
}

func (e *CSVParseError) Error() string {
	return "failed to parse CSV file: " + e.Err.Error()
}

func (e *CSVParseError) Unwrap() error { return e.Err }
