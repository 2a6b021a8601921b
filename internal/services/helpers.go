package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/metrics"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentBlobDeletes = 8

// deleteBlobs removes every key concurrently and waits for all of them.
// Failures are logged and counted but never returned.
func deleteBlobs(ctx context.Context, store storage.ObjectStore, logger *slog.Logger, keys []string) (deleted, failed int) {
	if len(keys) == 0 {
		return 0, 0
	}

	results := make([]bool, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBlobDeletes)

	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if err := store.Delete(gctx, key); err != nil {
				logger.Warn("Failed to delete blob", "key", key, "error", err)
				metrics.BlobDeletions.WithLabelValues("failed").Inc()
				return nil
			}
			results[i] = true
			metrics.BlobDeletions.WithLabelValues("ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	for _, ok := range results {
		if ok {
			deleted++
		} else {
			failed++
		}
	}
	return deleted, failed
}

// publishEvent sends an event and only logs a failure. A nil publisher
// disables events.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}
	event := events.NewEvent(eventType, data)
	if err := publisher.PublishEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "event_type", eventType, "event_id", event.ID, "error", err)
	}
}

// notFoundAs maps a repository not-found error to the given sentinel and
// wraps anything else.
func notFoundAs(err error, sentinel error, op string) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func hashOptional(password *string) (*string, error) {
	if password == nil || *password == "" {
		return nil, nil
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeEmail trims and lowercases an email in place. It runs before
// validation so that padded or mixed-case input is accepted.
func normalizeEmail(email *string) {
	if email != nil {
		*email = strings.ToLower(strings.TrimSpace(*email))
	}
}
