package usecase

import (
	"time"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

func assembleResponse(
	processed []domain.ProcessedDocument,
	validation domain.ValidationResult,
	decision domain.ClaimDecision,
	elapsed time.Duration,
) domain.ClaimProcessingResponse {
	infos := make([]domain.DocumentInfo, 0, len(processed))
	structured := domain.StructuredData{
		Documents: []domain.StructuredDocument{},
		Summary:   domain.ProcessingSummary{TotalDocuments: len(processed)},
	}

	for _, doc := range processed {
		info := domain.DocumentInfo{
			Type:          doc.Type,
			Filename:      doc.Filename,
			ExtractedData: map[string]any{},
		}
		if doc.Extraction != nil {
			info.Confidence = doc.Extraction.Confidence
			info.ExtractedData = doc.Extraction.ExtractedData

			structured.Documents = append(structured.Documents, domain.StructuredDocument{
				Type:     doc.Type,
				Filename: doc.Filename,
				Data:     doc.Extraction.ExtractedData,
			})
			structured.Summary.ProcessedSuccessfully++
		} else {
			structured.Summary.ProcessingErrors++
		}
		infos = append(infos, info)
	}

	return domain.ClaimProcessingResponse{
		Documents:      infos,
		StructuredData: structured,
		Validation:     validation,
		ClaimDecision:  decision,
		ProcessingTime: elapsed.Seconds(),
		Timestamp:      time.Now().UTC(),
	}
}
