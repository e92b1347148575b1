package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PinPurpose classifies what a pinned CID holds
type PinPurpose string

const (
	PinPurposeCode     PinPurpose = "CODE"
	PinPurposeSchema   PinPurpose = "SCHEMA"
	PinPurposeMetadata PinPurpose = "METADATA"
)

// PinRecord is one entry of the local pin ledger
type PinRecord struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	CID        string      `json:"cid" gorm:"column:cid;uniqueIndex"`
	Label      string      `json:"label"`
	Purpose    PinPurpose  `json:"purpose"`
	FlowID     uuid.UUID   `json:"flowId" gorm:"type:uuid;index"`
	UnpinnedAt null.Time   `json:"unpinnedAt,omitempty"`
	Note       null.String `json:"note,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Active reports whether the pin is still held remotely.
func (r *PinRecord) Active() bool {
	return !r.UnpinnedAt.Valid
}
