package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordGeneration records progression generation metrics on the active
// transaction
func (m *SentryMetrics) RecordGeneration(ctx context.Context, genre, mood string, progressions, chords int, duration time.Duration) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("generation.genre", genre)
		transaction.SetTag("generation.mood", mood)
		transaction.SetData("generation.progressions", progressions)
		transaction.SetData("generation.chords", chords)
		transaction.SetData("generation.duration_ms", duration.Milliseconds())
		return
	}

	span := sentry.StartSpan(ctx, "progression.generate")
	defer span.Finish()
	span.SetTag("genre", genre)
	span.SetTag("mood", mood)
	span.SetData("progressions", progressions)
	span.SetData("chords", chords)
	span.SetData("duration_ms", duration.Milliseconds())
	span.Description = fmt.Sprintf("Generate: %s/%s", genre, mood)
}
