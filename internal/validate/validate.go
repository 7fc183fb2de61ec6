// Package validate provides field-level checks for claim payloads and
// attachment uploads.
package validate

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxUploadBytes is the upload size ceiling (10 MiB).
const MaxUploadBytes = 10 << 20

// DateLayout is the wire format for incurred dates.
const DateLayout = "2006-01-02"

var allowedExts = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Filename checks that the filename carries an allowed document extension.
func Filename(fn string) error {
	if _, ok := allowedExts[strings.ToLower(filepath.Ext(fn))]; !ok {
		return errors.New("only pdf, jpg, jpeg, and png files are allowed")
	}
	return nil
}

// ContentTypeFor returns the expected Content-Type for a filename, or ""
// when the extension is not allowed.
func ContentTypeFor(fn string) string {
	return allowedExts[strings.ToLower(filepath.Ext(fn))]
}

// ContentType checks that the declared Content-Type is one of the allowed
// document types (case insensitive, trimmed).
func ContentType(ct string) error {
	if !allowedContentTypes[strings.TrimSpace(strings.ToLower(ct))] {
		return errors.New("Content-Type must be application/pdf, image/jpeg, or image/png")
	}
	return nil
}

// SizeOK checks that a declared upload size is positive and within the cap.
func SizeOK(n int64) error {
	if n <= 0 {
		return errors.New("file size required")
	}
	if n > MaxUploadBytes {
		return errors.New("file exceeds the 10 MiB limit")
	}
	return nil
}

// Amount checks that a claim amount is strictly positive.
func Amount(d decimal.Decimal) error {
	if d.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

// Date parses an incurred date in YYYY-MM-DD form.
func Date(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("date must be in YYYY-MM-DD format")
	}
	return t, nil
}

// Description checks the free-text description bounds.
func Description(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("description required")
	}
	if len(s) > 1000 {
		return errors.New("description too long")
	}
	return nil
}

// Comment checks that a reviewer comment is present.
func Comment(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("comment required")
	}
	return nil
}
