package loader

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// extractPDFText reads all pages of a PDF as plain text.
func extractPDFText(path string) (text string, err error) {
	// The pdf package panics on some malformed files; treat those as
	// unreadable documents rather than crashing the index build.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = nil
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	content, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := buf.ReadFrom(content); err != nil {
		return "", err
	}
	return buf.String(), nil
}
