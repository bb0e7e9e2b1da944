package audit

import (
	"context"

	"github.com/google/uuid"

	id "hsaonboard/pkg/domain"
)

// Store persists audit events. The postgres implementation writes to the
// transactional outbox; the relay worker is responsible for Kafka delivery
// and for materializing queryable rows.
type Store interface {
	Append(ctx context.Context, event Event) error
	AppendWithID(ctx context.Context, eventID uuid.UUID, event Event) error
	ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]Event, error)
}
