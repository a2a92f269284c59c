package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

// ClaimValidator cross-checks the processed document set for missing
// required documents, hard conflicts (discrepancies) and soft data-quality
// issues (warnings). Validate is total: an internal panic is converted
// into a discrepancy and an invalid result.
type ClaimValidator struct{}

func NewClaimValidator() *ClaimValidator {
	return &ClaimValidator{}
}

// Only the bill is mandatory; every other document type is optional.
var requiredDocumentTypes = []domain.DocumentType{domain.TypeBill}

func (v *ClaimValidator) Validate(docs []domain.ProcessedDocument) (result domain.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("validation_panic", "panic", r)
			result = domain.ValidationResult{
				MissingDocuments: []string{},
				Discrepancies:    []string{fmt.Sprintf("Validation error: %v", r)},
				Warnings:         []string{},
				IsValid:          false,
			}
		}
	}()

	missing := v.checkMissingDocuments(docs)

	discrepancies := []string{}
	discrepancies = append(discrepancies, v.checkDataConsistency(docs)...)
	discrepancies = append(discrepancies, v.checkDateConsistency(docs)...)
	discrepancies = append(discrepancies, v.checkPatientNameConsistency(docs)...)

	warnings := []string{}
	warnings = append(warnings, v.checkDataQuality(docs)...)
	warnings = append(warnings, v.checkAmounts(docs)...)

	isValid := len(discrepancies) == 0 && len(missing) == 0

	slog.Info("validation_complete",
		"is_valid", isValid,
		"missing", len(missing),
		"discrepancies", len(discrepancies),
		"warnings", len(warnings),
	)

	return domain.ValidationResult{
		MissingDocuments: missing,
		Discrepancies:    discrepancies,
		Warnings:         warnings,
		IsValid:          isValid,
	}
}

// checkMissingDocuments counts only documents that produced an extraction
// result toward presence.
func (v *ClaimValidator) checkMissingDocuments(docs []domain.ProcessedDocument) []string {
	present := map[domain.DocumentType]bool{}
	for _, doc := range docs {
		if doc.Extraction != nil {
			present[doc.Type] = true
		}
	}

	missing := []string{}
	for _, required := range requiredDocumentTypes {
		if !present[required] {
			missing = append(missing, string(required))
		}
	}
	return missing
}

// checkDataConsistency is the first of two independent patient-name
// passes: case/whitespace normalization only, pairwise against the first
// observed name. Data is keyed by document type, last document wins per
// type.
func (v *ClaimValidator) checkDataConsistency(docs []domain.ProcessedDocument) []string {
	byType := map[domain.DocumentType]map[string]any{}
	typeOrder := []domain.DocumentType{}
	for _, doc := range docs {
		if doc.Extraction == nil || len(doc.Extraction.ExtractedData) == 0 {
			continue
		}
		if _, seen := byType[doc.Type]; !seen {
			typeOrder = append(typeOrder, doc.Type)
		}
		byType[doc.Type] = doc.Extraction.ExtractedData
	}

	type namedEntry struct {
		docType domain.DocumentType
		name    string
	}
	names := []namedEntry{}
	for _, docType := range typeOrder {
		if name := stringField(byType[docType], "patient_name"); name != "" {
			names = append(names, namedEntry{docType: docType, name: name})
		}
	}

	discrepancies := []string{}
	if len(names) > 1 {
		first := strings.ToLower(strings.TrimSpace(names[0].name))
		for _, entry := range names[1:] {
			if strings.ToLower(strings.TrimSpace(entry.name)) != first {
				discrepancies = append(discrepancies,
					fmt.Sprintf("Patient name mismatch: %s vs %s", names[0].name, entry.name))
			}
		}
	}
	return discrepancies
}

// checkDateConsistency collects the service and admission/discharge dates
// but deliberately evaluates nothing: the date-window rule is a declared,
// unimplemented check and must stay a no-op.
func (v *ClaimValidator) checkDateConsistency(docs []domain.ProcessedDocument) []string {
	serviceDates := []string{}
	admissionDates := []string{}
	dischargeDates := []string{}

	for _, doc := range docs {
		if doc.Extraction == nil || len(doc.Extraction.ExtractedData) == 0 {
			continue
		}
		data := doc.Extraction.ExtractedData
		switch doc.Type {
		case domain.TypeBill:
			if d := stringField(data, "date_of_service"); d != "" {
				serviceDates = append(serviceDates, d)
			}
		case domain.TypeDischargeSummary:
			if d := stringField(data, "admission_date"); d != "" {
				admissionDates = append(admissionDates, d)
			}
			if d := stringField(data, "discharge_date"); d != "" {
				dischargeDates = append(dischargeDates, d)
			}
		}
	}

	_ = serviceDates
	_ = admissionDates
	_ = dischargeDates
	return []string{}
}

// checkPatientNameConsistency is the second name pass: honorific-stripping
// normalization, one discrepancy listing every distinct normalized name.
func (v *ClaimValidator) checkPatientNameConsistency(docs []domain.ProcessedDocument) []string {
	names := []string{}
	for _, doc := range docs {
		if doc.Extraction == nil || len(doc.Extraction.ExtractedData) == 0 {
			continue
		}
		if name := stringField(doc.Extraction.ExtractedData, "patient_name"); name != "" {
			names = append(names, name)
		}
	}
	if len(names) < 2 {
		return []string{}
	}

	seen := map[string]bool{}
	distinct := []string{}
	for _, name := range names {
		normalized := normalizeName(name)
		if !seen[normalized] {
			seen[normalized] = true
			distinct = append(distinct, normalized)
		}
	}

	if len(distinct) > 1 {
		return []string{fmt.Sprintf("Patient name inconsistency found: %s", strings.Join(distinct, ", "))}
	}
	return []string{}
}

func (v *ClaimValidator) checkDataQuality(docs []domain.ProcessedDocument) []string {
	warnings := []string{}
	for _, doc := range docs {
		if doc.Extraction == nil {
			warnings = append(warnings, fmt.Sprintf("Failed to process document: %s", doc.Filename))
			continue
		}
		if doc.Extraction.Confidence < 0.5 {
			warnings = append(warnings,
				fmt.Sprintf("Low confidence (%.2f) for %s", doc.Extraction.Confidence, doc.Filename))
		}
		if len(doc.Extraction.Errors) > 0 {
			warnings = append(warnings,
				fmt.Sprintf("Processing errors in %s: %s", doc.Filename, strings.Join(doc.Extraction.Errors, ", ")))
		}
	}
	return warnings
}

func (v *ClaimValidator) checkAmounts(docs []domain.ProcessedDocument) []string {
	warnings := []string{}
	for _, doc := range docs {
		if doc.Type != domain.TypeBill || doc.Extraction == nil || len(doc.Extraction.ExtractedData) == 0 {
			continue
		}
		amount, present := doc.Extraction.ExtractedData["total_amount"].(float64)
		switch {
		case !present:
			warnings = append(warnings, fmt.Sprintf("Missing total amount in bill: %s", doc.Filename))
		case amount <= 0:
			warnings = append(warnings, fmt.Sprintf("Invalid total amount (%v) in bill: %s", amount, doc.Filename))
		case amount > 100000:
			warnings = append(warnings, fmt.Sprintf("Unusually high amount (%v) in bill: %s", amount, doc.Filename))
		}
	}
	return warnings
}

// normalizeName lowercases, trims, strips a fixed honorific set and
// collapses inner whitespace.
func normalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range []string{"mr.", "mrs.", "ms.", "dr.", "prof."} {
		if strings.HasPrefix(normalized, prefix) {
			normalized = strings.TrimSpace(strings.TrimPrefix(normalized, prefix))
		}
	}
	return strings.Join(strings.Fields(normalized), " ")
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}
