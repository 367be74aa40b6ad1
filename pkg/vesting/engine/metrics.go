package engine

import (
	"context"

	"github.com/elasticvest/vesting-server/pkg/metrics"
)

const (
	metricsStructName = "vesting.engine"

	operationEventName = "VestingOperation"
)

func recordOperationEvent(ctx context.Context, operation, account, asset string, quantity uint64) {
	kvPairs := map[string]interface{}{
		"operation": operation,
		"account":   account,
		"asset":     asset,
		"quantity":  quantity,
		"count":     1,
	}
	metrics.RecordEvent(ctx, operationEventName, kvPairs)
}
