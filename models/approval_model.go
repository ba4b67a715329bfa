package models

import (
	"engsupply-erp/types"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind enumerates the business documents that can go through approval.
type DocumentKind string

const (
	KindAssetTransaction        DocumentKind = "asset_transaction"
	KindAssetMaintenance        DocumentKind = "asset_maintenance"
	KindAssetTransfer           DocumentKind = "asset_transfer"
	KindPhysicalCountAdjustment DocumentKind = "physical_count_adjustment"
	KindInsuranceClaim          DocumentKind = "insurance_claim"
	KindAssetLease              DocumentKind = "asset_lease"
)

var documentKinds = map[DocumentKind]bool{
	KindAssetTransaction:        true,
	KindAssetMaintenance:        true,
	KindAssetTransfer:           true,
	KindPhysicalCountAdjustment: true,
	KindInsuranceClaim:          true,
	KindAssetLease:              true,
}

func (k DocumentKind) Valid() bool {
	return documentKinds[k]
}

type ApprovalStatus string

const (
	StatusPending    ApprovalStatus = "pending"
	StatusInProgress ApprovalStatus = "in_progress"
	StatusApproved   ApprovalStatus = "approved"
	StatusRejected   ApprovalStatus = "rejected"
	StatusCancelled  ApprovalStatus = "cancelled"
)

// Open reports whether the request still accepts approve/reject/cancel.
func (s ApprovalStatus) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

type ApprovalAction string

const (
	ActionCreated   ApprovalAction = "created"
	ActionApproved  ApprovalAction = "approved"
	ActionRejected  ApprovalAction = "rejected"
	ActionCancelled ApprovalAction = "cancelled"
)

type ApprovalWorkflow struct {
	BaseModel
	CompanyID    types.SnowflakeID `json:"company_id" gorm:"not null;uniqueIndex:idx_workflow_company_code"`
	Code         string            `json:"code" gorm:"size:50;not null;uniqueIndex:idx_workflow_company_code"`
	Name         string            `json:"name" gorm:"size:200;not null"`
	DocumentType DocumentKind      `json:"document_type" gorm:"size:50;not null;index"`
	Description  string            `json:"description" gorm:"type:text"`
	IsSequential bool              `json:"is_sequential" gorm:"not null"`
	IsActive     bool              `json:"is_active" gorm:"not null"`
	Levels       []ApprovalLevel   `json:"levels,omitempty" gorm:"foreignKey:WorkflowID"`
}

type ApprovalLevel struct {
	BaseModel
	WorkflowID            types.SnowflakeID   `json:"workflow_id" gorm:"not null;uniqueIndex:idx_level_workflow_order"`
	LevelOrder            int                 `json:"level_order" gorm:"not null;uniqueIndex:idx_level_workflow_order"`
	Name                  string              `json:"name" gorm:"size:100;not null"`
	ApproverRoleID        types.SnowflakeID   `json:"approver_role_id" gorm:"not null;index"`
	ApproverRole          *Role               `json:"approver_role,omitempty" gorm:"foreignKey:ApproverRoleID"`
	AmountFrom            decimal.NullDecimal `json:"amount_from" gorm:"type:decimal(15,3)"`
	AmountTo              decimal.NullDecimal `json:"amount_to" gorm:"type:decimal(15,3)"`
	IsRequired            bool                `json:"is_required" gorm:"not null"`
	ExpectedResponseHours int                 `json:"expected_response_hours" gorm:"not null"`
}

// AcceptsAmount is the inclusive range check. A missing or zero bound is unbounded.
func (l *ApprovalLevel) AcceptsAmount(amount decimal.Decimal) bool {
	if l.AmountFrom.Valid && !l.AmountFrom.Decimal.IsZero() && amount.LessThan(l.AmountFrom.Decimal) {
		return false
	}
	if l.AmountTo.Valid && !l.AmountTo.Decimal.IsZero() && amount.GreaterThan(l.AmountTo.Decimal) {
		return false
	}
	return true
}

// DocumentRef points at the business record under approval. The core never loads it.
type DocumentRef struct {
	Kind     DocumentKind      `json:"kind" gorm:"column:document_type;size:50;not null;index:idx_request_document"`
	RecordID types.SnowflakeID `json:"id" gorm:"column:document_id;not null;index:idx_request_document"`
}

func (d DocumentRef) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("unknown document kind %q", d.Kind)
	}
	if d.RecordID <= 0 {
		return fmt.Errorf("document id is required")
	}
	return nil
}

func (d DocumentRef) String() string {
	return fmt.Sprintf("%s#%s", d.Kind, d.RecordID)
}

type ApprovalRequest struct {
	BaseModel
	CompanyID      types.SnowflakeID   `json:"company_id" gorm:"not null;uniqueIndex:idx_request_company_number"`
	RequestNumber  string              `json:"request_number" gorm:"size:50;not null;uniqueIndex:idx_request_company_number"`
	WorkflowID     types.SnowflakeID   `json:"workflow_id" gorm:"not null;index"`
	Workflow       *ApprovalWorkflow   `json:"workflow,omitempty" gorm:"foreignKey:WorkflowID"`
	Document       DocumentRef         `json:"document" gorm:"embedded"`
	Amount         decimal.NullDecimal `json:"amount" gorm:"type:decimal(15,3)"`
	Status         ApprovalStatus      `json:"status" gorm:"size:20;not null;index"`
	CurrentLevelID *types.SnowflakeID  `json:"current_level_id"`
	CurrentLevel   *ApprovalLevel      `json:"current_level,omitempty" gorm:"foreignKey:CurrentLevelID"`
	RequestedBy    types.SnowflakeID   `json:"requested_by" gorm:"not null;index"`
	RequestedAt    time.Time           `json:"requested_at" gorm:"not null"`
	CompletedAt    *time.Time          `json:"completed_at"`
	Description    string              `json:"description" gorm:"type:text"`
	Notes          string              `json:"notes" gorm:"type:text"`
}

// HasAmount follows the legacy rule: a zero amount counts as no amount.
func (r *ApprovalRequest) HasAmount() bool {
	return r.Amount.Valid && !r.Amount.Decimal.IsZero()
}
