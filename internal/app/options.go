package service

import (
	"time"

	"github.com/acclaimhq/acclaim/internal/adapters/catalog"
	"github.com/acclaimhq/acclaim/internal/adapters/repository"
	"github.com/acclaimhq/acclaim/internal/domain/digest"
	"github.com/acclaimhq/acclaim/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. Defaults to the in-memory store.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
		}
	}
}

// WithCatalog sets the badge catalog. Defaults to the built-in badge set.
func WithCatalog(c *catalog.Catalog) Option {
	return func(svc *Service) {
		if c != nil {
			svc.catalog = c
		}
	}
}

// WithWorkerCount sets the number of pipeline workers.
func WithWorkerCount(count int) Option {
	return func(svc *Service) {
		if count > 0 {
			svc.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the effort queue.
func WithQueueSize(size int) Option {
	return func(svc *Service) {
		if size > 0 {
			svc.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(svc *Service) {
		if size > 0 {
			svc.dedupeSize = size
		}
	}
}

// WithMinRecognitionImpact sets the impact floor below which efforts earn
// no recognition.
func WithMinRecognitionImpact(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.minRecognitionImpact = n
		}
	}
}

// WithTopRecognitions sets how many recognitions a digest references.
func WithTopRecognitions(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.topRecognitions = n
		}
	}
}

// WithGrowthMetric selects the digest growth comparison metric.
func WithGrowthMetric(m digest.GrowthMetric) Option {
	return func(svc *Service) {
		if m != "" {
			svc.growthMetric = m
		}
	}
}

// WithRetry configures the bounded retry policy for transient store
// failures: attempts per operation and the base backoff delay.
func WithRetry(attempts int, base time.Duration) Option {
	return func(svc *Service) {
		if attempts > 0 {
			svc.retryAttempts = attempts
		}
		if base > 0 {
			svc.retryBase = base
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}
