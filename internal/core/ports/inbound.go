package ports

import (
	"context"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

// ClaimProcessor drives the full claim-decision pipeline for one request.
// It always returns a structured response; processing-domain failures are
// encoded in the response, never surfaced as an error.
type ClaimProcessor interface {
	Process(ctx context.Context, files []domain.UploadedFile) domain.ClaimProcessingResponse
}
