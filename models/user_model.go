package models

import "engsupply-erp/types"

type User struct {
	BaseModel
	CompanyID types.SnowflakeID `json:"company_id" gorm:"not null;index"`
	Username  string            `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Password  string            `json:"-" gorm:"size:255"`
	Name      string            `json:"name" gorm:"size:200"`
	Email     string            `json:"email" gorm:"size:200"`
	IsActive  bool              `json:"is_active" gorm:"not null"`
	Roles     []Role            `json:"roles,omitempty" gorm:"many2many:user_roles;"`
}

// Role juga berfungsi sebagai "group" approver di approval level.
type Role struct {
	BaseModel
	CompanyID   types.SnowflakeID `json:"company_id" gorm:"not null;uniqueIndex:idx_role_company_code"`
	Code        string            `json:"code" gorm:"size:50;not null;uniqueIndex:idx_role_company_code"`
	Name        string            `json:"name" gorm:"size:100;not null"`
	Description string            `json:"description" gorm:"size:255"`
	Permissions []Permission      `json:"permissions,omitempty" gorm:"many2many:role_permissions;"`
}

// Permission Model
type Permission struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"size:255"`
}

const (
	PermApprovalsConfigure = "approvals.configure"
	PermApprovalsRequest   = "approvals.request"
	PermNumberingManage    = "numbering.manage"
	PermNumberingIssue     = "numbering.issue"
	PermPricingManage      = "pricing.manage"
	PermUomImport          = "uom.import"
)
