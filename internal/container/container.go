package container

import (
	"context"
	"fmt"

	"catalog/feedsync/internal/client"
	"catalog/feedsync/internal/config"
	"catalog/feedsync/internal/delivery"
	"catalog/feedsync/internal/domain"
	"catalog/feedsync/internal/metrics"
	"catalog/feedsync/internal/proxy"
	"catalog/feedsync/internal/schema"
	"catalog/feedsync/internal/service"
	"catalog/feedsync/internal/transform"

	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Client  client.FeedClient
	Metrics *metrics.RunMetrics

	Service *service.Service
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if err := ConfigureLogging(cfg.Log); err != nil {
		return nil, err
	}

	container := &Container{
		Config:  cfg,
		Metrics: metrics.NewRunMetrics(),
	}

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Feed.Proxies, cfg.Feed.URL, cfg.Feed.CheckProxy)
	if len(cfg.Feed.Proxies) > 0 && proxySupplier.Len() == 0 {
		return nil, fmt.Errorf("none of the %d configured proxies is usable", len(cfg.Feed.Proxies))
	}

	feedClient := client.NewFeedClient(cfg.Feed, proxySupplier)
	container.Client = feedClient

	transformer := transform.NewTransformer(transform.Options{
		Indent:       cfg.Transform.Indent,
		VariantName1: cfg.Transform.VariantName1,
		VariantName2: cfg.Transform.VariantName2,
	})

	// A nil *schema.Validator must not reach the service as a non-nil interface.
	var validator service.Validator
	if cfg.Transform.SchemaPath != "" {
		v, err := schema.LoadFile(cfg.Transform.SchemaPath)
		if err != nil {
			return nil, err
		}
		log.Infof("✅ Loaded output schema %s", cfg.Transform.SchemaPath)
		validator = v
	}

	container.Service = service.NewService(
		feedClient,
		transformer,
		validator,
		delivery.NewFTPSink(nil),
		delivery.NewLocalWriter(cfg.Fallback.Dir, cfg.Fallback.Filename),
		container.Metrics,
		cfg.Feed.URL,
		cfg.Delivery,
	)

	return container, nil
}

// Run executes one sync and pushes its metrics when a Pushgateway is set.
// A failed push is only logged; it never changes the outcome.
func (c *Container) Run(ctx context.Context) domain.Outcome {
	outcome := c.Service.Run(ctx)

	if url := c.Config.Metrics.PushgatewayURL; url != "" {
		if err := c.Metrics.Push(context.WithoutCancel(ctx), url, c.Config.Metrics.Job); err != nil {
			log.Warnf("⚠️ %v", err)
		} else {
			log.Debugf("Pushed run metrics to %s", url)
		}
	}

	return outcome
}

// ConfigureLogging applies the level and format to the standard logger.
func ConfigureLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
