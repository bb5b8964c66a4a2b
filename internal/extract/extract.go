package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

var (
	// ErrUnsupportedType is returned for anything that is not a PDF.
	ErrUnsupportedType = errors.New("unsupported mime type")
	// ErrNoText is returned when a PDF parses but carries no text layer.
	ErrNoText = errors.New("document has no extractable text")
)

// Text pulls plain text out of an in-memory PDF.
// Library used: github.com/ledongthuc/pdf.
func Text(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if normalized != mimePDF {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}

	text, err := extractPDF(data)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
