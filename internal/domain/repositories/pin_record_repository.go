package repositories

import (
	"context"

	"github.com/google/uuid"

	"codemint.backend/internal/domain/entities"
)

// PinRecordRepository is the local ledger of pins this service created.
// It backs code-bundle supersede/unpin and the optional compensation of
// pins left behind by failed flows.
type PinRecordRepository interface {
	Create(ctx context.Context, record *entities.PinRecord) error
	GetByCID(ctx context.Context, cid string) (*entities.PinRecord, error)
	GetByFlowID(ctx context.Context, flowID uuid.UUID) ([]*entities.PinRecord, error)
	MarkUnpinned(ctx context.Context, cid string) error
	ListActive(ctx context.Context, limit, offset int) ([]*entities.PinRecord, int, error)
}
