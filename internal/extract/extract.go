// Package extract turns downloaded objects into plain text for chunking.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/upb/proof-layer/services"
)

// Text returns the text content of an object. Keys ending in .pdf are parsed
// as PDF; everything else must be UTF-8.
func Text(name string, data []byte) (string, error) {
	if IsPDF(name) {
		return pdfText(data)
	}
	if !utf8.Valid(data) {
		return "", services.WrapValidation(fmt.Sprintf("%s is not valid UTF-8 text", name), services.ErrInvalidInput)
	}
	return string(data), nil
}

// IsPDF reports whether name has a .pdf extension
func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func pdfText(data []byte) (text string, err error) {
	// the parser panics on some malformed content streams
	defer func() {
		if p := recover(); p != nil {
			text, err = "", services.WrapValidation(fmt.Sprintf("malformed pdf: %v", p), services.ErrInvalidInput)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", services.WrapValidation(fmt.Sprintf("failed to open pdf: %v", err), services.ErrInvalidInput)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", services.WrapValidation(fmt.Sprintf("failed to read pdf text: %v", err), services.ErrInvalidInput)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf buffer: %w", err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", services.WrapValidation("no text extracted from pdf", services.ErrInvalidInput)
	}
	return buf.String(), nil
}
