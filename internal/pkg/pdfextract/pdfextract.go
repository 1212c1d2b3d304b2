// Package pdfextract turns linked PDF pages (flyers, annual reports) into
// plain text for ingestion.
package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrTooLarge is returned when the document exceeds the read limit.
var ErrTooLarge = errors.New("pdf exceeds size limit")

// ExtractText reads at most maxBytes from r and returns the document's plain
// text with runs of whitespace collapsed. A document with no extractable text
// yields "", nil. maxBytes <= 0 means no limit.
func ExtractText(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf failed: %w", err)
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return "", ErrTooLarge
	}
	if len(b) == 0 {
		return "", nil
	}

	doc, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	return strings.Join(strings.Fields(string(out)), " "), nil
}
