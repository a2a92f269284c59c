package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/core/ports"
)

// ProcessClaimUseCase drives the five-stage claim pipeline: text
// extraction, classification, concurrent field extraction, validation,
// decision synthesis. Every stage tolerates per-document failure; the
// request as a whole always returns a structured response.
type ProcessClaimUseCase struct {
	textExtractor ports.TextExtractor
	classifier    ports.DocumentClassifier
	extractors    map[domain.DocumentType]ports.FieldExtractor
	validator     *ClaimValidator
	engine        *DecisionEngine
}

func NewProcessClaimUseCase(
	textExtractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	extractors map[domain.DocumentType]ports.FieldExtractor,
	validator *ClaimValidator,
	engine *DecisionEngine,
) *ProcessClaimUseCase {
	return &ProcessClaimUseCase{
		textExtractor: textExtractor,
		classifier:    classifier,
		extractors:    extractors,
		validator:     validator,
		engine:        engine,
	}
}

func (uc *ProcessClaimUseCase) Process(ctx context.Context, files []domain.UploadedFile) (response domain.ClaimProcessingResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("claim_processing_panic", "panic", r)
			response = uc.fallbackResponse(start, fmt.Errorf("%v", r))
		}
	}()

	slog.Info("claim_processing_start", "files", len(files))

	raw := uc.extractTexts(ctx, files)
	classified := uc.classifyDocuments(ctx, raw)
	processed := uc.extractFields(ctx, classified)

	validation := uc.validator.Validate(processed)
	decision := uc.engine.Decide(processed, validation)

	response = assembleResponse(processed, validation, decision, time.Since(start))

	slog.Info("claim_processing_done",
		"files", len(files),
		"status", decision.Status,
		"confidence", decision.Confidence,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return response
}

// Stage 1: best-effort text extraction. A failing document is kept with
// empty text and the error attached; the batch continues.
func (uc *ProcessClaimUseCase) extractTexts(ctx context.Context, files []domain.UploadedFile) []domain.RawDocument {
	raw := make([]domain.RawDocument, 0, len(files))
	for _, file := range files {
		text, err := uc.textExtractor.Extract(ctx, file.Filename, file.Content)
		doc := domain.RawDocument{
			Filename: file.Filename,
			Content:  file.Content,
			Text:     text,
		}
		if err != nil {
			slog.Warn("text_extraction_failed", "filename", file.Filename, "error", err)
			doc.Text = ""
			doc.ExtractionError = err.Error()
		}
		raw = append(raw, doc)
	}
	return raw
}

// Stage 2: classification. Empty text skips the classifier entirely and
// the document stays unknown with zero confidence.
func (uc *ProcessClaimUseCase) classifyDocuments(ctx context.Context, raw []domain.RawDocument) []domain.ClassifiedDocument {
	classified := make([]domain.ClassifiedDocument, 0, len(raw))
	for _, doc := range raw {
		entry := domain.ClassifiedDocument{
			RawDocument: doc,
			Type:        domain.TypeUnknown,
		}
		if doc.Text != "" {
			cls := uc.classifier.Classify(ctx, doc.Text, doc.Filename)
			entry.Type = cls.Type
			entry.ClassificationConfidence = cls.Confidence
			entry.ClassificationError = cls.Err
		}
		classified = append(classified, entry)
	}
	return classified
}

// Stage 3: field extraction, fanned out one task per document and joined
// before validation. Each task writes only its own slot; a panic in one
// task becomes a failed entry for that document and never disturbs its
// siblings.
func (uc *ProcessClaimUseCase) extractFields(ctx context.Context, classified []domain.ClassifiedDocument) []domain.ProcessedDocument {
	processed := make([]domain.ProcessedDocument, len(classified))

	var wg sync.WaitGroup
	for i, doc := range classified {
		wg.Add(1)
		go func(slot int, doc domain.ClassifiedDocument) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("field_extraction_panic", "filename", doc.Filename, "panic", r)
					processed[slot] = domain.ProcessedDocument{
						ClassifiedDocument: doc,
						ProcessingError:    fmt.Sprintf("field extraction failed: %v", r),
					}
				}
			}()
			processed[slot] = uc.extractOne(ctx, doc)
		}(i, doc)
	}
	wg.Wait()

	return processed
}

func (uc *ProcessClaimUseCase) extractOne(ctx context.Context, doc domain.ClassifiedDocument) domain.ProcessedDocument {
	entry := domain.ProcessedDocument{ClassifiedDocument: doc}

	extractor, supported := uc.extractors[doc.Type]
	if !supported || doc.Text == "" {
		// Not an error: unsupported types and empty documents simply
		// carry no extraction result.
		return entry
	}

	result := extractor.Extract(ctx, doc.Text, doc.Filename)
	entry.Extraction = &result
	return entry
}

// fallbackResponse is the whole-request boundary: the caller always gets
// a structured response, even when the pipeline itself broke.
func (uc *ProcessClaimUseCase) fallbackResponse(start time.Time, err error) domain.ClaimProcessingResponse {
	return domain.ClaimProcessingResponse{
		Documents: []domain.DocumentInfo{},
		StructuredData: domain.StructuredData{
			Documents: []domain.StructuredDocument{},
		},
		Validation: domain.ValidationResult{
			MissingDocuments: []string{"processing_error"},
			Discrepancies:    []string{fmt.Sprintf("Processing failed: %v", err)},
			Warnings:         []string{},
			IsValid:          false,
		},
		ClaimDecision: domain.ClaimDecision{
			Status:     domain.StatusRejected,
			Reason:     fmt.Sprintf("Processing error: %v", err),
			Confidence: 0.0,
		},
		ProcessingTime: time.Since(start).Seconds(),
		Timestamp:      time.Now().UTC(),
	}
}
