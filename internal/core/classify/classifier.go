// Package classify assigns a document-type label to extracted text. The
// generative oracle is the primary path; a deterministic filename-keyword
// heuristic covers oracle failures, unparseable responses and labels
// outside the recognized vocabulary.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/core/ports"
	"github.com/dmarchenko/medclaims/internal/jsonx"
)

const (
	defaultSnippetChars = 2000

	fallbackMatchConfidence   = 0.6
	fallbackUnknownConfidence = 0.3
	defaultOracleConfidence   = 0.5
)

// keyword sets scanned in priority order; first match wins.
var filenameRules = []struct {
	docType  domain.DocumentType
	keywords []string
}{
	{domain.TypeBill, []string{"bill", "invoice", "payment", "charge"}},
	{domain.TypeDischargeSummary, []string{"discharge", "summary", "report"}},
	{domain.TypeIDCard, []string{"id", "card", "identity"}},
	{domain.TypePrescription, []string{"prescription", "medication", "rx"}},
	{domain.TypeInsuranceCard, []string{"insurance", "policy"}},
}

type Classifier struct {
	oracle       ports.Oracle
	snippetChars int
}

// New builds a classifier. A nil oracle is allowed and forces the
// filename heuristic on every call.
func New(oracle ports.Oracle, snippetChars int) *Classifier {
	if snippetChars <= 0 {
		snippetChars = defaultSnippetChars
	}
	return &Classifier{oracle: oracle, snippetChars: snippetChars}
}

// Classify labels one document. It never fails: every degraded oracle
// path lands on the filename heuristic, and the heuristic is total.
func (c *Classifier) Classify(ctx context.Context, text, filename string) domain.Classification {
	if c.oracle == nil {
		return c.byFilename(filename, "oracle not configured")
	}

	raw, err := c.oracle.Generate(ctx, domain.OracleRequest{
		SystemPrompt: classificationSystemPrompt,
		UserPrompt:   c.userPrompt(text, filename),
	})
	if err != nil {
		slog.Warn("classification_oracle_failed", "filename", filename, "error", err)
		return c.byFilename(filename, domain.WrapError(domain.ErrOracleFailure, "classify", err).Error())
	}

	parsed, ok := jsonx.Parse(raw)
	if !ok {
		slog.Warn("classification_unparseable", "filename", filename)
		return c.byFilename(filename, "unparseable classification response")
	}

	label, _ := parsed["document_type"].(string)
	docType, known := domain.ParseDocumentType(label)
	if !known {
		slog.Warn("classification_unknown_label", "filename", filename, "label", label)
		return c.byFilename(filename, fmt.Sprintf("unrecognized label %q", label))
	}

	confidence := defaultOracleConfidence
	if v, ok := parsed["confidence"].(float64); ok {
		confidence = clamp01(v)
	}

	slog.Info("document_classified", "filename", filename, "document_type", docType, "confidence", confidence)
	return domain.Classification{Type: docType, Confidence: confidence}
}

// byFilename is the deterministic fallback: same filename, same answer.
func (c *Classifier) byFilename(filename, reason string) domain.Classification {
	lower := strings.ToLower(filename)
	for _, rule := range filenameRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return domain.Classification{Type: rule.docType, Confidence: fallbackMatchConfidence, Err: reason}
			}
		}
	}
	return domain.Classification{Type: domain.TypeUnknown, Confidence: fallbackUnknownConfidence, Err: reason}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (c *Classifier) userPrompt(text, filename string) string {
	snippet := truncateSnippet(text, c.snippetChars)
	return fmt.Sprintf(`Filename: %s

Document Content:
%s

Classify this document.`, filename, snippet)
}

// truncateSnippet cuts text to at most limit bytes without splitting a
// multi-byte rune.
func truncateSnippet(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

const classificationSystemPrompt = `You are a medical document classifier. Analyze the provided document text and filename to classify it into one of these categories:
- bill: Medical bills, invoices, payment statements
- discharge_summary: Hospital discharge summaries, medical reports
- id_card: Patient ID cards, insurance cards, identification documents
- prescription: Prescription documents, medication lists
- insurance_card: Insurance cards, policy documents
- unknown: If the document doesn't fit any category

Consider both the filename and content. Look for key indicators:
- Bills: amounts, charges, hospital billing, invoice numbers
- Discharge: admission/discharge dates, diagnosis, treatment plans
- ID Cards: patient information, ID numbers, addresses
- Prescriptions: medication names, dosages, pharmacy information

Respond with a JSON object containing document_type (one of the categories above), confidence (0.0-1.0) and reasoning (brief explanation).`
