package services

import (
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"engsupply-erp/types"

	"gorm.io/gorm"
)

// Authorizer decides whether a user may act on an approval level.
// tx is the transaction the transition runs in.
type Authorizer interface {
	CanApprove(tx *gorm.DB, userID types.SnowflakeID, level *models.ApprovalLevel) (bool, error)
}

// RoleMembershipAuthorizer: user harus anggota role approver di level tersebut.
type RoleMembershipAuthorizer struct{}

func (RoleMembershipAuthorizer) CanApprove(tx *gorm.DB, userID types.SnowflakeID, level *models.ApprovalLevel) (bool, error) {
	if level == nil || userID == 0 {
		return false, nil
	}
	return repositories.NewUserRepository(tx).HasRole(userID, level.ApproverRoleID)
}

// AuthorizerFunc adapts a plain function to Authorizer.
type AuthorizerFunc func(tx *gorm.DB, userID types.SnowflakeID, level *models.ApprovalLevel) (bool, error)

func (f AuthorizerFunc) CanApprove(tx *gorm.DB, userID types.SnowflakeID, level *models.ApprovalLevel) (bool, error) {
	return f(tx, userID, level)
}
