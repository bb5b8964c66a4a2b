package analyses

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// Validation messages are user-facing as is.
	ErrUnsupportedFileType error = &validationError{msg: "Please upload a PDF file only"}
	ErrFileTooLarge        error = &validationError{msg: "File size must be less than 10MB"}
	ErrEmptyFile           error = &validationError{msg: "File is empty"}

	ErrProvider   = errors.New("analysis provider failed")
	ErrStoreWrite = errors.New("store write failed")
	ErrStoreRead  = errors.New("store read failed")
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

const (
	ErrorCodeValidation       = "validation_error"
	ErrorCodeFileTooLarge     = "file_too_large"
	ErrorCodeUploadInProgress = "upload_in_progress"
	ErrorCodeProvider         = "provider_error"
	ErrorCodeStoreWrite       = "store_write_error"
	ErrorCodeHistory          = "history_unavailable"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeInternal         = "internal_error"
)

// ProviderKind classifies provider failures so callers can tell them apart.
type ProviderKind string

const (
	ProviderUnreadable     ProviderKind = "unreadable_document"
	ProviderTimeout        ProviderKind = "timeout"
	ProviderSchemaMismatch ProviderKind = "schema_mismatch"
	ProviderUnavailable    ProviderKind = "unavailable"
)

// ProviderError reports a failed analysis. It matches ErrProvider.
type ProviderError struct {
	Kind ProviderKind
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("analysis provider: %s", e.Kind)
	}
	return fmt.Sprintf("analysis provider: %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// StoreError reports a failed gateway call. Create failures match ErrStoreWrite,
// everything else matches ErrStoreRead.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrStoreWrite:
		return e.Op == opCreate
	case ErrStoreRead:
		return e.Op != opCreate
	}
	return false
}

const (
	opCreate = "create"
	opList   = "list"
	opGet    = "get"
)

func providerError(kind ProviderKind, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Kind: kind, Err: err}
}
