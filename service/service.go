package service

import (
	"context"
	"errors"
	"time"

	"building-risk-service/azure"
	"building-risk-service/config"
	"building-risk-service/llm"
	"building-risk-service/metrics"
	"building-risk-service/models"
	"building-risk-service/parser"
	"building-risk-service/rabbitmq"
	"building-risk-service/stubllm"

	"github.com/apex/log"
)

// Service orchestrates one analysis call: build request, send, normalize.
// Each call is independent; there is no shared mutable state across
// invocations and nothing is persisted.
type Service struct {
	cfg       *config.Config
	client    llm.Client
	publisher *rabbitmq.Publisher
}

// New wires the configured provider and the optional report publisher.
func New(cfg *config.Config) *Service {
	var client llm.Client
	if cfg.LLMProvider == "stub" {
		client = stubllm.NewClient()
	} else {
		client = azure.NewClient(azure.Config{
			Endpoint:   cfg.AzureOpenAIEndpoint,
			APIKey:     cfg.AzureOpenAIAPIKey,
			Deployment: cfg.AzureOpenAIDeployment,
			APIVersion: cfg.AzureOpenAIAPIVersion,
			Timeout:    cfg.RequestTimeout,
		})
	}
	log.Infof("Analyzer LLM provider=%s deployment=%s", client.SourceName(), cfg.AzureOpenAIDeployment)

	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		if err != nil {
			// Continue without publisher - analysis still works.
			log.Warnf("Failed to initialize RabbitMQ publisher: %v", err)
			publisher = nil
		}
	}

	return &Service{
		cfg:       cfg,
		client:    client,
		publisher: publisher,
	}
}

// NewWithClient builds a service around an explicit provider. Used by tests.
func NewWithClient(cfg *config.Config, client llm.Client) *Service {
	return &Service{cfg: cfg, client: client}
}

// Analyze runs the full pipeline for one image set. It returns an error only
// for validation, configuration, and transport failures; an unparsable model
// reply is absorbed into a fallback report instead.
func (s *Service) Analyze(ctx context.Context, images []models.ImageAsset) (*models.RiskReport, error) {
	start := time.Now()
	metrics.ImagesPerRequest.Observe(float64(len(images)))

	raw, err := s.client.AnalyzeImages(ctx, images)
	if err != nil {
		result := classifyError(err)
		metrics.AnalysesTotal.WithLabelValues(result).Inc()
		metrics.AnalysisDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
		log.WithField("result", result).Errorf("Analysis of %d image(s) failed: %v", len(images), err)
		return nil, err
	}

	report := parser.ParseReport(raw)

	result := "ok"
	if report.Fallback {
		result = "fallback"
		metrics.ParseFallbackTotal.Inc()
		log.Warnf("Model reply could not be parsed, returning fallback report (%d bytes of raw text)", len(raw))
	}
	metrics.AnalysesTotal.WithLabelValues(result).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())

	s.publishReport(report)

	return report, nil
}

// Health probes the provider and translates failures into a HealthStatus.
// A missing configuration is reported here without any network call.
func (s *Service) Health(ctx context.Context) models.HealthStatus {
	if err := s.client.CheckHealth(ctx); err != nil {
		return models.HealthStatus{OK: false, Message: err.Error()}
	}
	return models.HealthStatus{OK: true}
}

// SourceName exposes the active provider label.
func (s *Service) SourceName() string {
	return s.client.SourceName()
}

// Close releases the publisher connection if one was configured.
func (s *Service) Close() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Warnf("Failed to close RabbitMQ publisher: %v", err)
		}
	}
}

func (s *Service) publishReport(report *models.RiskReport) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(report); err != nil {
		metrics.PublishErrorTotal.Inc()
		log.Errorf("Failed to publish analyzed report: %v", err)
	}
}

func classifyError(err error) string {
	var validationErr *models.ValidationError
	var configErr *models.ConfigurationError
	var transportErr *models.TransportError
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &configErr):
		return "configuration"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "error"
	}
}
