package repositories

import (
	"engsupply-erp/models"
	"engsupply-erp/types"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(DB *gorm.DB) *UserRepository {
	return &UserRepository{DB: DB}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

// Get user by ID
func (r *UserRepository) GetByID(id types.SnowflakeID) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("username = ? AND is_active = ?", username, true).First(&user).Error
	return &user, err
}

// GetWithPermissions memuat Roles.Permissions untuk pengecekan permission.
func (r *UserRepository) GetWithPermissions(id types.SnowflakeID) (*models.User, error) {
	var user models.User
	err := r.DB.Preload("Roles.Permissions").First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) HasRole(userID, roleID types.SnowflakeID) (bool, error) {
	var count int64
	err := r.DB.Table("user_roles").
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) RoleIDs(userID types.SnowflakeID) ([]types.SnowflakeID, error) {
	var ids []types.SnowflakeID
	err := r.DB.Table("user_roles").Where("user_id = ?", userID).Pluck("role_id", &ids).Error
	return ids, err
}

// UsersInRole: user aktif yang memegang role, dipakai untuk kirim notifikasi.
func (r *UserRepository) UsersInRole(roleID types.SnowflakeID) ([]models.User, error) {
	var users []models.User
	err := r.DB.Select("users.*").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_id = ? AND users.is_active = ?", roleID, true).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) GetRole(companyID, roleID types.SnowflakeID) (*models.Role, error) {
	var role models.Role
	err := r.DB.Where("company_id = ? AND id = ?", companyID, roleID).First(&role).Error
	return &role, err
}
