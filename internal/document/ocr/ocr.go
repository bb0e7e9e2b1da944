// Package ocr defines the extraction port for uploaded documents and its
// hosted vision model implementation.
package ocr

import (
	"context"

	"hsaonboard/internal/document/models"
)

// Extractor reads structured fields from a document image. Implementations
// must honor ctx cancellation; extraction calls a hosted model and can be
// slow.
type Extractor interface {
	ExtractGovernmentID(ctx context.Context, image []byte, contentType string) (*models.GovernmentIDData, error)
	ExtractEmployerProof(ctx context.Context, image []byte, contentType string) (*models.EmployerProofData, error)
}
