package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

// DecisionEngine synthesizes the final claim verdict from the processed
// documents and the validation result. The rule order is load-bearing:
// the first matching rule wins. Decide is total; a panic becomes a
// rejected decision with zero confidence.
type DecisionEngine struct{}

func NewDecisionEngine() *DecisionEngine {
	return &DecisionEngine{}
}

func (e *DecisionEngine) Decide(docs []domain.ProcessedDocument, validation domain.ValidationResult) (decision domain.ClaimDecision) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("decision_panic", "panic", r)
			decision = domain.ClaimDecision{
				Status:     domain.StatusRejected,
				Reason:     fmt.Sprintf("Decision processing error: %v", r),
				Confidence: 0.0,
			}
		}
	}()

	// Rule 1: a bill document must be present in the batch. Presence is
	// judged on the classified type alone, not on extraction success.
	hasBill := false
	for _, doc := range docs {
		if doc.Type == domain.TypeBill {
			hasBill = true
			break
		}
	}
	if !hasBill {
		return domain.ClaimDecision{
			Status:     domain.StatusRejected,
			Reason:     "Missing required medical bill document",
			Confidence: 0.9,
		}
	}

	if len(validation.Discrepancies) > 0 {
		// Rule 2: insurance-related discrepancies reject the claim.
		insuranceRelated := false
		for _, discrepancy := range validation.Discrepancies {
			if strings.Contains(strings.ToLower(discrepancy), "insurance") {
				insuranceRelated = true
				break
			}
		}
		if insuranceRelated {
			return domain.ClaimDecision{
				Status:     domain.StatusRejected,
				Reason:     "Insurance claim validation failed: " + strings.Join(validation.Discrepancies, ", "),
				Confidence: 0.3,
			}
		}

		// Rule 3: any other discrepancy is approved with warnings. This
		// is deliberate policy, not an oversight.
		return domain.ClaimDecision{
			Status:     domain.StatusApproved,
			Reason:     "Approved with warnings: " + strings.Join(validation.Discrepancies, ", "),
			Confidence: 0.7,
		}
	}

	// Rule 4: average extraction confidence over documents above the 0.3
	// floor; documents at or below it are excluded from both sides of the
	// mean.
	total := 0.0
	qualifying := 0
	for _, doc := range docs {
		if doc.Extraction != nil && doc.Extraction.Confidence > 0.3 {
			total += doc.Extraction.Confidence
			qualifying++
		}
	}
	avgConfidence := 0.0
	if qualifying > 0 {
		avgConfidence = total / float64(qualifying)
	}

	if avgConfidence < 0.7 {
		return domain.ClaimDecision{
			Status:     domain.StatusRequiresReview,
			Reason:     "Low confidence in extracted data. Manual review required.",
			Confidence: avgConfidence,
		}
	}

	// Rule 5: approve; warnings are informational only.
	reason := "All required documents present and data is consistent"
	if len(validation.Warnings) > 0 {
		reason = "Approved with minor warnings: " + strings.Join(validation.Warnings, ", ")
	}
	return domain.ClaimDecision{
		Status:     domain.StatusApproved,
		Reason:     reason,
		Confidence: avgConfidence,
	}
}
