package repositories

import (
	"engsupply-erp/models"

	"gorm.io/gorm"
)

type CompanyRepository struct {
	DB *gorm.DB
}

func NewCompanyRepository(DB *gorm.DB) *CompanyRepository {
	return &CompanyRepository{DB: DB}
}

func (r *CompanyRepository) ListActive() ([]models.Company, error) {
	var companies []models.Company
	err := r.DB.Where("is_active = ?", true).Order("code ASC").Find(&companies).Error
	return companies, err
}
