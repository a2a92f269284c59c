package domain

import "time"

// ClaimStatus is the terminal outcome of decision synthesis.
type ClaimStatus string

const (
	StatusApproved       ClaimStatus = "approved"
	StatusRejected       ClaimStatus = "rejected"
	StatusPending        ClaimStatus = "pending"
	StatusRequiresReview ClaimStatus = "requires_review"
)

// ValidationResult aggregates cross-document findings. Discrepancies block
// approval (subject to the decision ladder); warnings never do.
type ValidationResult struct {
	MissingDocuments []string `json:"missing_documents"`
	Discrepancies    []string `json:"discrepancies"`
	Warnings         []string `json:"warnings"`
	IsValid          bool     `json:"is_valid"`
}

// ClaimDecision is the final verdict for one claim request.
type ClaimDecision struct {
	Status         ClaimStatus `json:"status"`
	Reason         string      `json:"reason"`
	Confidence     float64     `json:"confidence"`
	AdditionalInfo string      `json:"additional_info,omitempty"`
}

// DocumentInfo is the per-document summary carried in the response.
type DocumentInfo struct {
	Type          DocumentType   `json:"type"`
	Filename      string         `json:"filename"`
	Confidence    float64        `json:"confidence"`
	ExtractedData map[string]any `json:"extracted_data"`
}

// StructuredDocument is one successfully extracted document in the
// aggregate bundle.
type StructuredDocument struct {
	Type     DocumentType   `json:"type"`
	Filename string         `json:"filename"`
	Data     map[string]any `json:"data"`
}

// ProcessingSummary counts outcomes across the batch.
type ProcessingSummary struct {
	TotalDocuments        int `json:"total_documents"`
	ProcessedSuccessfully int `json:"processed_successfully"`
	ProcessingErrors      int `json:"processing_errors"`
}

// StructuredData is the aggregate structured-data bundle.
type StructuredData struct {
	Documents []StructuredDocument `json:"documents"`
	Summary   ProcessingSummary    `json:"summary"`
}

// ClaimProcessingResponse is the root output of one claim request.
// Constructed once, never mutated, serialized and returned.
type ClaimProcessingResponse struct {
	Documents      []DocumentInfo   `json:"documents"`
	StructuredData StructuredData   `json:"structured_data"`
	Validation     ValidationResult `json:"validation"`
	ClaimDecision  ClaimDecision    `json:"claim_decision"`
	ProcessingTime float64          `json:"processing_time"`
	Timestamp      time.Time        `json:"timestamp"`
}
