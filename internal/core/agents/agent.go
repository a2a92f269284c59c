package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/core/ports"
	"github.com/dmarchenko/medclaims/internal/jsonx"
)

// Agent extracts a typed field set for one document type. All concrete
// agents share this engine and differ only in schema, prompts and the
// cleaning rules keyed by field type. Extract is total: oracle and parse
// failures produce an empty result with the error recorded, never an
// error return.
type Agent struct {
	name         string
	documentType domain.DocumentType
	oracle       ports.Oracle
	schema       domain.FieldSchema
	systemPrompt string
	docLabel     string
}

func newAgent(
	name string,
	documentType domain.DocumentType,
	oracle ports.Oracle,
	schema domain.FieldSchema,
	systemPrompt, docLabel string,
) *Agent {
	return &Agent{
		name:         name,
		documentType: documentType,
		oracle:       oracle,
		schema:       schema,
		systemPrompt: systemPrompt,
		docLabel:     docLabel,
	}
}

func (a *Agent) Name() string { return a.name }

func (a *Agent) DocumentType() domain.DocumentType { return a.documentType }

func (a *Agent) Extract(ctx context.Context, text, filename string) domain.ExtractionResult {
	start := time.Now()
	slog.Info("agent_extract_start", "agent", a.name, "filename", filename)

	raw, err := a.oracle.Generate(ctx, domain.OracleRequest{
		SystemPrompt: a.systemPrompt,
		UserPrompt:   a.userPrompt(text, filename),
		Schema:       &a.schema,
	})
	if err != nil {
		return a.failed(start, domain.WrapError(domain.ErrOracleFailure, "generate", err))
	}

	parsed, ok := jsonx.Parse(raw)
	if !ok {
		return a.failed(start, domain.WrapError(domain.ErrParseFailure, "recover json", fmt.Errorf("no structured data in oracle response")))
	}

	cleaned := cleanFields(a.schema, parsed)
	confidence := scoreConfidence(cleaned)

	slog.Info("agent_extract_done",
		"agent", a.name,
		"filename", filename,
		"confidence", confidence,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)

	return domain.ExtractionResult{
		AgentName:      a.name,
		DocumentType:   a.documentType,
		ExtractedData:  cleaned,
		Confidence:     confidence,
		ProcessingTime: time.Since(start).Seconds(),
		Errors:         []string{},
	}
}

func (a *Agent) failed(start time.Time, err error) domain.ExtractionResult {
	slog.Warn("agent_extract_degraded", "agent", a.name, "error", err)
	return domain.ExtractionResult{
		AgentName:      a.name,
		DocumentType:   a.documentType,
		ExtractedData:  map[string]any{},
		Confidence:     0.0,
		ProcessingTime: time.Since(start).Seconds(),
		Errors:         []string{err.Error()},
	}
}

func (a *Agent) userPrompt(text, filename string) string {
	return fmt.Sprintf(`Extract structured data from this %s document:

Filename: %s

Document Content:
%s

Extract all relevant %s information according to the schema.`,
		a.docLabel, filename, text, a.docLabel)
}

// scoreConfidence reflects field completeness: the share of non-null
// values, +0.1 when any list field came back non-empty, clamped to 1.0.
// An empty field set scores 0.
func scoreConfidence(data map[string]any) float64 {
	if len(data) == 0 {
		return 0.0
	}

	nonNull := 0
	listBonus := false
	for _, value := range data {
		if value == nil {
			continue
		}
		if text, ok := value.(string); ok && text == "" {
			continue
		}
		nonNull++
		if list, ok := value.([]string); ok && len(list) > 0 {
			listBonus = true
		}
	}

	confidence := float64(nonNull) / float64(len(data))
	if listBonus {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
