// Package report delivers final-intelligence payloads to the external
// evaluation endpoint. Delivery failure is an explicit outcome the engine
// retries on a later turn, never a crash.
package report

import (
	"context"

	"github.com/avee-h/scambait/internal/domain"
)

// Reporter delivers a report payload. A nil error means the sink confirmed
// acceptance; anything else is retryable.
type Reporter interface {
	Deliver(ctx context.Context, payload domain.ReportPayload) error
}
