// Package otel exposes OpenTelemetry instruments for the service. The
// global provider is a no-op unless an SDK pipeline is installed by the
// deployment environment.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github-integration"

// Metrics holds all metric instruments for webhook reconciliation and
// issue ingestion.
type Metrics struct {
	WebhooksCreated      metric.Int64Counter
	WebhooksReused       metric.Int64Counter
	WebhooksDeleted      metric.Int64Counter
	WebhookDeleteFailed  metric.Int64Counter
	IssuesIngested       metric.Int64Counter
	TicketCreateFailures metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.WebhooksCreated, err = meter.Int64Counter("gitrello.webhooks.created",
		metric.WithDescription("Webhooks created at the provider"))
	if err != nil {
		return nil, err
	}

	m.WebhooksReused, err = meter.Int64Counter("gitrello.webhooks.reused",
		metric.WithDescription("Webhook ids reused from another link"))
	if err != nil {
		return nil, err
	}

	m.WebhooksDeleted, err = meter.Int64Counter("gitrello.webhooks.deleted",
		metric.WithDescription("Webhooks deleted at the provider"))
	if err != nil {
		return nil, err
	}

	m.WebhookDeleteFailed, err = meter.Int64Counter("gitrello.webhooks.delete_failed",
		metric.WithDescription("Best-effort webhook deletions that failed"))
	if err != nil {
		return nil, err
	}

	m.IssuesIngested, err = meter.Int64Counter("gitrello.issues.ingested",
		metric.WithDescription("Issue-opened events processed"))
	if err != nil {
		return nil, err
	}

	m.TicketCreateFailures, err = meter.Int64Counter("gitrello.tickets.create_failed",
		metric.WithDescription("Work-item creations that failed during fan-out"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
