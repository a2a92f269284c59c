package ports

import (
	"context"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

// Oracle is the external generative service. It is unreliable by contract:
// it may time out, return malformed text, or return confidently wrong
// values. Callers never trust its output without recovery and cleaning.
type Oracle interface {
	Generate(ctx context.Context, req domain.OracleRequest) (string, error)
}

// TextExtractor produces best-effort plain text from raw document bytes.
// An error (or empty text) degrades the document, never the batch.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, content []byte) (string, error)
}

// DocumentClassifier assigns one of the fixed DocumentType labels.
// Total by design: it always returns a valid label and never fails.
type DocumentClassifier interface {
	Classify(ctx context.Context, text, filename string) domain.Classification
}

// FieldExtractor produces a typed, cleaned field set for one document
// type. Total by design: oracle or parse failures yield an empty result
// with the error recorded, confidence 0.
type FieldExtractor interface {
	Extract(ctx context.Context, text, filename string) domain.ExtractionResult
}
