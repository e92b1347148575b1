package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type PinRecord struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	CID        string      `gorm:"column:cid;type:varchar(255);not null;uniqueIndex"`
	Label      string      `gorm:"type:varchar(255)"`
	Purpose    string      `gorm:"type:varchar(50);not null;index"`
	FlowID     uuid.UUID   `gorm:"type:uuid;index"`
	UnpinnedAt null.Time   `gorm:"index"`
	Note       null.String `gorm:"type:varchar(500)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
