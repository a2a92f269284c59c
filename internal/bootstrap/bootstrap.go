package bootstrap

import (
	"log/slog"
	"time"

	"github.com/dmarchenko/medclaims/internal/config"
	"github.com/dmarchenko/medclaims/internal/core/agents"
	"github.com/dmarchenko/medclaims/internal/core/classify"
	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/core/ports"
	"github.com/dmarchenko/medclaims/internal/core/usecase"
	"github.com/dmarchenko/medclaims/internal/infrastructure/extractor/pdf"
	"github.com/dmarchenko/medclaims/internal/infrastructure/llm/gemini"
	"github.com/dmarchenko/medclaims/internal/infrastructure/resilience"
	"github.com/dmarchenko/medclaims/internal/observability/metrics"
)

const ServiceName = "medclaims-api"

type App struct {
	Config    config.Config
	Processor ports.ClaimProcessor
	Metrics   *metrics.ServerMetrics

	OracleConfigured bool
}

// New wires the claim pipeline. The oracle is optional: without an API
// key the service still runs on filename classification alone, with no
// field extraction.
func New(cfg config.Config) *App {
	var oracle ports.Oracle
	if cfg.GeminiAPIKey != "" {
		executor := resilience.NewExecutor(resilience.Config{
			Retry: resilience.RetryPolicy{
				Attempts:  cfg.RetryMaxAttempts,
				BaseDelay: time.Duration(cfg.RetryBaseDelayMillis) * time.Millisecond,
				MaxDelay:  time.Duration(cfg.RetryMaxDelayMillis) * time.Millisecond,
				Factor:    2.0,
			},
			Breaker: resilience.BreakerPolicy{
				Enabled:        cfg.BreakerEnabled,
				MinSamples:     uint32(cfg.BreakerMinSamples),
				TripRatio:      cfg.BreakerTripRatio,
				CooldownPeriod: time.Duration(cfg.BreakerCooldownSecs) * time.Second,
				ProbeRequests:  2,
			},
		})
		oracle = gemini.New(cfg.GeminiURL, cfg.GeminiAPIKey, cfg.GeminiModel,
			gemini.WithTimeout(cfg.OracleTimeout),
			gemini.WithRateLimit(cfg.OracleRPS, cfg.OracleBurst),
			gemini.WithExecutor(executor),
		)
	} else {
		slog.Warn("oracle_not_configured", "effect", "filename classification only, no field extraction")
	}

	var enhancer ports.Oracle
	if cfg.TextEnhancementEnabled {
		enhancer = oracle
	}
	textExtractor := pdf.NewExtractor(enhancer)

	classifier := classify.New(oracle, cfg.ClassifierSnippetChars)

	extractors := map[domain.DocumentType]ports.FieldExtractor{}
	if oracle != nil {
		idCardAgent := agents.NewIDCardAgent(oracle)
		extractors[domain.TypeBill] = agents.NewBillAgent(oracle)
		extractors[domain.TypeDischargeSummary] = agents.NewDischargeAgent(oracle)
		extractors[domain.TypeIDCard] = idCardAgent
		// Insurance cards carry the same field set as patient ID cards.
		extractors[domain.TypeInsuranceCard] = idCardAgent
	}

	processor := usecase.NewProcessClaimUseCase(
		textExtractor,
		classifier,
		extractors,
		usecase.NewClaimValidator(),
		usecase.NewDecisionEngine(),
	)

	return &App{
		Config:           cfg,
		Processor:        processor,
		Metrics:          metrics.NewServerMetrics(ServiceName),
		OracleConfigured: oracle != nil,
	}
}
