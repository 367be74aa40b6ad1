package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type nrContextKey string

// NewRelicContextKey is the context key under which the newrelic application
// is made available for event recording.
const NewRelicContextKey nrContextKey = "newrelic_application"

// NewContext returns a context with the provided newrelic application attached
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	return context.WithValue(ctx, NewRelicContextKey, app)
}
