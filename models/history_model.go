package models

import (
	"engsupply-erp/controllers/idgen"
	"engsupply-erp/types"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrHistoryImmutable = errors.New("approval history is append-only")

// ApprovalHistory tidak pernah di-update atau di-delete, hanya insert.
type ApprovalHistory struct {
	ID         types.SnowflakeID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	RequestID  types.SnowflakeID  `json:"request_id" gorm:"not null;index"`
	LevelID    *types.SnowflakeID `json:"level_id"`
	Level      *ApprovalLevel     `json:"level,omitempty" gorm:"foreignKey:LevelID"`
	ApproverID *types.SnowflakeID `json:"approver_id"`
	Approver   *User              `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
	Action     ApprovalAction     `json:"action" gorm:"size:20;not null"`
	ActionAt   time.Time          `json:"action_at" gorm:"not null"`
	Comments   string             `json:"comments" gorm:"type:text"`
	CreatedAt  time.Time          `json:"created_at"`
}

func (h *ApprovalHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == 0 {
		h.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

func (h *ApprovalHistory) BeforeUpdate(tx *gorm.DB) error {
	return ErrHistoryImmutable
}

func (h *ApprovalHistory) BeforeDelete(tx *gorm.DB) error {
	return ErrHistoryImmutable
}
