package service

import (
	"context"
	"time"

	"catalog/feedsync/internal/client"
	"catalog/feedsync/internal/config"
	"catalog/feedsync/internal/delivery"
	"catalog/feedsync/internal/domain"
	"catalog/feedsync/internal/metrics"
	"catalog/feedsync/internal/transform"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Transformer interface {
	Transform(input string) (*transform.Result, error)
}

type Validator interface {
	Validate(document string) error
}

type FallbackWriter interface {
	Write(document string) (string, error)
}

// Service runs one fetch, transform, deliver cycle.
type Service struct {
	client      client.FeedClient
	transformer Transformer
	validator   Validator
	sink        delivery.Sink
	fallback    FallbackWriter
	metrics     *metrics.RunMetrics

	feedURL     string
	destination config.DeliveryConfig
}

// NewService wires the run stages. validator and runMetrics may be nil.
func NewService(
	feedClient client.FeedClient,
	transformer Transformer,
	validator Validator,
	sink delivery.Sink,
	fallback FallbackWriter,
	runMetrics *metrics.RunMetrics,
	feedURL string,
	destination config.DeliveryConfig,
) *Service {
	return &Service{
		client:      feedClient,
		transformer: transformer,
		validator:   validator,
		sink:        sink,
		fallback:    fallback,
		metrics:     runMetrics,
		feedURL:     feedURL,
		destination: destination,
	}
}

// Run executes the stages in order. Fetch, transform and validation
// failures end the run with nothing written; a delivery failure falls
// back to the local copy.
func (s *Service) Run(ctx context.Context) domain.Outcome {
	logger := log.WithField("run_id", uuid.NewString())
	started := time.Now()

	outcome := s.run(ctx, logger)

	if s.metrics != nil {
		s.metrics.ObserveOutcome(outcome, time.Since(started), time.Now())
	}
	logger.WithField("outcome", outcome.String()).
		Infof("Run finished in %v", time.Since(started).Round(time.Millisecond))

	return outcome
}

func (s *Service) run(ctx context.Context, logger *log.Entry) domain.Outcome {
	logger.Infof("🔄 Fetching feed %s", client.RedactURL(s.feedURL))

	body, err := s.client.Fetch(ctx, s.feedURL)
	if err != nil {
		logger.Errorf("❌ Failed to fetch feed: %v", err)
		return domain.OutcomeFailed
	}

	result, err := s.transformer.Transform(body)
	if err != nil {
		logger.Errorf("❌ Failed to transform feed: %v", err)
		return domain.OutcomeFailed
	}

	stats := result.Stats
	logger.Infof("✅ Transformed %d products with %d variants and %d images",
		stats.Products, stats.Variants, stats.Images)
	if s.metrics != nil {
		s.metrics.ObserveDocument(stats.Products, stats.Variants, stats.Images, len(result.Document))
	}

	if s.validator != nil {
		if err := s.validator.Validate(result.Document); err != nil {
			logger.Errorf("❌ Output document rejected: %v", err)
			return domain.OutcomeFailed
		}
		logger.Debug("Output document satisfies the schema")
	}

	err = s.sink.Deliver(ctx, result.Document, s.destination)
	if err == nil {
		logger.Infof("✅ Document delivered to %s", s.destination.Host)
		return domain.OutcomeDelivered
	}
	logger.Warnf("⚠️ Delivery failed, saving a local copy instead: %v", err)

	path, err := s.fallback.Write(result.Document)
	if err != nil {
		logger.Errorf("❌ Failed to save local copy: %v", err)
		return domain.OutcomeFallbackFailed
	}

	logger.Infof("💾 Local copy saved to %s", path)
	return domain.OutcomeFallback
}
