// Package records stores the audit trail received by the audit service.
package records

import (
	"context"
	"time"
)

// Record is one audited coordinator action as persisted by the service.
type Record struct {
	ID              string    `json:"id"`
	User            string    `json:"user"`
	Operation       string    `json:"operation"`
	ClientTimestamp string    `json:"client_timestamp"`
	ReceivedAt      time.Time `json:"received_at"`
}

// Repository persists records. List returns the most recently received
// records first, at most limit of them (all when limit <= 0).
type Repository interface {
	Save(ctx context.Context, r *Record) error
	List(ctx context.Context, limit int) ([]Record, error)
}
