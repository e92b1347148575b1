package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/infrastructure/models"
)

// PinRecordRepository implements the local pin ledger on gorm.
type PinRecordRepository struct {
	db *gorm.DB
}

// NewPinRecordRepository creates a new pin record repository
func NewPinRecordRepository(db *gorm.DB) *PinRecordRepository {
	return &PinRecordRepository{db: db}
}

// Create inserts a ledger entry for a freshly pinned CID.
func (r *PinRecordRepository) Create(ctx context.Context, record *entities.PinRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m := toModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	record.CreatedAt = m.CreatedAt
	record.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByCID gets a ledger entry by its CID.
func (r *PinRecordRepository) GetByCID(ctx context.Context, cid string) (*entities.PinRecord, error) {
	var m models.PinRecord
	if err := r.db.WithContext(ctx).Where("cid = ?", cid).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByFlowID lists all pins created by one flow, oldest first.
func (r *PinRecordRepository) GetByFlowID(ctx context.Context, flowID uuid.UUID) ([]*entities.PinRecord, error) {
	var ms []models.PinRecord
	if err := r.db.WithContext(ctx).
		Where("flow_id = ?", flowID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	records := make([]*entities.PinRecord, len(ms))
	for i := range ms {
		records[i] = toEntity(&ms[i])
	}
	return records, nil
}

// MarkUnpinned stamps the ledger entry as released. Marking an already
// released or unknown CID is not an error, matching the idempotent unpin.
func (r *PinRecordRepository) MarkUnpinned(ctx context.Context, cid string) error {
	return r.db.WithContext(ctx).
		Model(&models.PinRecord{}).
		Where("cid = ? AND unpinned_at IS NULL", cid).
		Update("unpinned_at", time.Now()).Error
}

// ListActive lists pins still held remotely, newest first.
func (r *PinRecordRepository) ListActive(ctx context.Context, limit, offset int) ([]*entities.PinRecord, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.PinRecord{}).
		Where("unpinned_at IS NULL").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.PinRecord
	if err := r.db.WithContext(ctx).
		Where("unpinned_at IS NULL").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	records := make([]*entities.PinRecord, len(ms))
	for i := range ms {
		records[i] = toEntity(&ms[i])
	}
	return records, int(total), nil
}

func toModel(record *entities.PinRecord) *models.PinRecord {
	return &models.PinRecord{
		ID:         record.ID,
		CID:        record.CID,
		Label:      record.Label,
		Purpose:    string(record.Purpose),
		FlowID:     record.FlowID,
		UnpinnedAt: record.UnpinnedAt,
		Note:       record.Note,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func toEntity(m *models.PinRecord) *entities.PinRecord {
	return &entities.PinRecord{
		ID:         m.ID,
		CID:        m.CID,
		Label:      m.Label,
		Purpose:    entities.PinPurpose(m.Purpose),
		FlowID:     m.FlowID,
		UnpinnedAt: m.UnpinnedAt,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
