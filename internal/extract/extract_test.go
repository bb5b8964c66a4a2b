package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTextRejectsNonPDF(t *testing.T) {
	_, err := Text(context.Background(), []byte("\x89PNG\r\n"), "image/png")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), "image/png") {
		t.Fatalf("expected mime type in error, got %v", err)
	}
}

func TestTextRejectsEmptyPayload(t *testing.T) {
	if _, err := Text(context.Background(), nil, "application/pdf"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestTextRejectsGarbage(t *testing.T) {
	_, err := Text(context.Background(), []byte("this is not a pdf at all"), "Application/PDF; charset=binary")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("parameters on the mime type must not make it unsupported: %v", err)
	}
}

func TestTextHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Text(ctx, []byte("%PDF-1.4"), "application/pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
