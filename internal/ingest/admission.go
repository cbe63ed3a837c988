package ingest

import (
	"errors"
	"fmt"

	"study-assistant/internal/shared/apperr"
)

var (
	ErrFileRequired    = errors.New("file is required")
	ErrSizeExceeded    = errors.New("size exceeded")
	ErrUnsupportedType = errors.New("unsupported type")
)

const mib = 1024 * 1024

// Guard admits uploads for one entry point. Each entry point owns its own Guard.
type Guard struct {
	MaxBytes   int64
	ImagesOnly bool
	// Table defaults to DefaultTable.
	Table *Table
}

// Admit checks size and type, and returns the normalized file on success.
// Every rejection is an apperr validation error wrapping one of the sentinels above.
func (g Guard) Admit(req UploadRequest) (NormalizedFile, error) {
	if req.Data == nil {
		return NormalizedFile{}, rejection("File is required", ErrFileRequired)
	}
	size := int64(len(req.Data))
	if size > g.MaxBytes {
		return NormalizedFile{}, g.SizeError()
	}

	table := g.Table
	if table == nil {
		table = DefaultTable
	}
	detected, canonical := table.resolve(req.DeclaredType, req.FileName)
	if !table.Supported(canonical) && !table.IsAlias(detected) {
		return NormalizedFile{}, rejection(
			fmt.Sprintf("Unsupported file type: %s. Please upload a PDF, DOC, DOCX, TXT, JPG, or PNG file.", detected),
			ErrUnsupportedType,
		)
	}
	if g.ImagesOnly && !canonical.IsImage() {
		return NormalizedFile{}, rejection(
			"Please upload an image file (JPEG, PNG, etc.)",
			ErrUnsupportedType,
		)
	}

	return NormalizedFile{
		CanonicalType: canonical,
		DeclaredType:  req.DeclaredType,
		SizeBytes:     size,
		FileName:      req.FileName,
	}, nil
}

func rejection(message string, cause error) error {
	return &apperr.Error{Kind: apperr.KindValidation, Message: message, Cause: cause}
}

func formatMiB(n int64) string {
	if n%mib == 0 {
		return fmt.Sprintf("%d", n/mib)
	}
	return fmt.Sprintf("%.1f", float64(n)/mib)
}

// SizeError returns the rejection Admit produces for an oversized payload.
// Transports use it when the body limit trips before the file is read.
func (g Guard) SizeError() error {
	return rejection(
		fmt.Sprintf("File size too large. Maximum size is %sMB.", formatMiB(g.MaxBytes)),
		ErrSizeExceeded,
	)
}
