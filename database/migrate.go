package database

import (
	"engsupply-erp/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.NumberingSequence{},
		&models.ApprovalWorkflow{},
		&models.ApprovalLevel{},
		&models.ApprovalRequest{},
		&models.ApprovalHistory{},
		&models.UomGroup{},
		&models.Uom{},
		&models.UomConversion{},
		&models.ItemCategory{},
		&models.Item{},
		&models.ItemVariant{},
		&models.PriceList{},
		&models.PriceListItem{},
		&models.PricingRule{},
		&models.PriceHistory{},
	)
}
