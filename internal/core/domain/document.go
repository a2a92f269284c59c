package domain

// DocumentType labels the kind of uploaded claim document and determines
// which field extractor (if any) applies.
type DocumentType string

const (
	TypeBill             DocumentType = "bill"
	TypeDischargeSummary DocumentType = "discharge_summary"
	TypeIDCard           DocumentType = "id_card"
	TypePrescription     DocumentType = "prescription"
	TypeInsuranceCard    DocumentType = "insurance_card"
	TypeUnknown          DocumentType = "unknown"
)

// ParseDocumentType maps a raw label onto the closed DocumentType set.
func ParseDocumentType(raw string) (DocumentType, bool) {
	switch DocumentType(raw) {
	case TypeBill, TypeDischargeSummary, TypeIDCard, TypePrescription, TypeInsuranceCard, TypeUnknown:
		return DocumentType(raw), true
	default:
		return TypeUnknown, false
	}
}

// UploadedFile is one file received at the transport boundary.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// RawDocument is an uploaded file after best-effort text extraction.
// Immutable once built; owned by the orchestrator for one request.
type RawDocument struct {
	Filename        string `json:"filename"`
	Content         []byte `json:"-"`
	Text            string `json:"-"`
	ExtractionError string `json:"extraction_error,omitempty"`
}

// Classification is the classifier's verdict for one document.
// Err records the oracle failure that forced the filename fallback;
// an empty Err means the oracle path produced the label.
type Classification struct {
	Type       DocumentType
	Confidence float64
	Err        string
}

// ClassifiedDocument couples a raw document with its type label.
type ClassifiedDocument struct {
	RawDocument
	Type                     DocumentType `json:"document_type"`
	ClassificationConfidence float64      `json:"classification_confidence"`
	ClassificationError      string       `json:"classification_error,omitempty"`
}

// ExtractionResult is the typed field set one agent produced for one
// document. A non-empty Errors list means extraction degraded; the data
// map may still be partially populated.
type ExtractionResult struct {
	AgentName      string         `json:"agent_name"`
	DocumentType   DocumentType   `json:"document_type"`
	ExtractedData  map[string]any `json:"extracted_data"`
	Confidence     float64        `json:"confidence"`
	ProcessingTime float64        `json:"processing_time"`
	Errors         []string       `json:"errors"`
}

// ProcessedDocument is the unit passed into validation: a classified
// document plus its optional extraction result. Extraction is absent when
// the type has no registered agent or the text was empty.
type ProcessedDocument struct {
	ClassifiedDocument
	Extraction      *ExtractionResult `json:"extraction,omitempty"`
	ProcessingError string            `json:"processing_error,omitempty"`
}

// FieldType is the primitive shape the oracle is asked to return for a
// field. Cleaning rules key off it as well.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldAmount FieldType = "amount"
	FieldDate   FieldType = "date"
	FieldPhone  FieldType = "phone"
	FieldList   FieldType = "list"
	FieldCodes  FieldType = "codes"
)

// FieldSpec names one expected output field.
type FieldSpec struct {
	Name string
	Type FieldType
}

// FieldSchema is the target shape handed to the oracle alongside a prompt.
type FieldSchema struct {
	Name   string
	Fields []FieldSpec
}

// OracleRequest is one call to the generative oracle. Schema is optional;
// when present the response is expected (never trusted) to be a JSON
// object with the named fields.
type OracleRequest struct {
	SystemPrompt string
	UserPrompt   string
	Schema       *FieldSchema
}
