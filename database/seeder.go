package database

import (
	"engsupply-erp/config"
	"engsupply-erp/models"
	"engsupply-erp/types"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var permissionSeeds = []models.Permission{
	{Name: models.PermApprovalsConfigure, Description: "Configure approval workflows and levels"},
	{Name: models.PermApprovalsRequest, Description: "Submit approval requests"},
	{Name: models.PermNumberingManage, Description: "Manage numbering sequences"},
	{Name: models.PermNumberingIssue, Description: "Issue document numbers"},
	{Name: models.PermPricingManage, Description: "Manage price lists and pricing rules"},
	{Name: models.PermUomImport, Description: "Import unit of measure conversions"},
}

var sequenceSeeds = []struct {
	DocType models.DocumentType
	Prefix  string
}{
	{models.DocSalesInvoice, "INV"},
	{models.DocSalesOrder, "SO"},
	{models.DocSalesQuotation, "QT"},
	{models.DocPurchaseOrder, "PO"},
	{models.DocPurchaseInvoice, "PINV"},
	{models.DocJournalEntry, "JV"},
	{models.DocPaymentVoucher, "PV"},
	{models.DocReceiptVoucher, "RV"},
	{models.DocApprovalRequest, "APR"},
}

// RunSeeders idempotent: data yang sudah ada tidak disentuh.
func RunSeeders(db *gorm.DB, seed config.SeedConfig, log *zap.Logger) error {
	company, err := seedCompany(db, seed)
	if err != nil {
		return err
	}

	perms, err := seedPermissions(db)
	if err != nil {
		return err
	}

	role, err := seedAdminRole(db, company.ID, perms)
	if err != nil {
		return err
	}

	if err := seedAdminUser(db, company.ID, role, seed, log); err != nil {
		return err
	}

	return seedSequences(db, company.ID)
}

func seedCompany(db *gorm.DB, seed config.SeedConfig) (*models.Company, error) {
	var company models.Company
	err := db.Where("code = ?", seed.CompanyCode).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		company = models.Company{Code: seed.CompanyCode, Name: seed.CompanyName, IsActive: true}
		err = db.Create(&company).Error
	}
	return &company, err
}

func seedPermissions(db *gorm.DB) ([]models.Permission, error) {
	perms := make([]models.Permission, 0, len(permissionSeeds))
	for _, p := range permissionSeeds {
		var existing models.Permission
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			existing = p
			err = db.Create(&existing).Error
		}
		if err != nil {
			return nil, err
		}
		perms = append(perms, existing)
	}
	return perms, nil
}

func seedAdminRole(db *gorm.DB, companyID types.SnowflakeID, perms []models.Permission) (*models.Role, error) {
	var role models.Role
	err := db.Where("company_id = ? AND code = ?", companyID, "ADMIN").First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = models.Role{CompanyID: companyID, Code: "ADMIN", Name: "Administrator"}
		if err = db.Create(&role).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
		return nil, err
	}
	return &role, nil
}

func seedAdminUser(db *gorm.DB, companyID types.SnowflakeID, role *models.Role, seed config.SeedConfig, log *zap.Logger) error {
	var existing models.User
	err := db.Where("username = ?", seed.AdminUsername).First(&existing).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		CompanyID: companyID,
		Username:  seed.AdminUsername,
		Password:  string(hash),
		Name:      "Administrator",
		IsActive:  true,
		Roles:     []models.Role{*role},
	}
	if err := db.Create(&user).Error; err != nil {
		log.Error("Gagal insert user", zap.String("username", user.Username), zap.Error(err))
		return err
	}
	log.Info("Insert user", zap.String("username", user.Username))
	return nil
}

func seedSequences(db *gorm.DB, companyID types.SnowflakeID) error {
	year := time.Now().Year()
	for _, s := range sequenceSeeds {
		var existing models.NumberingSequence
		err := db.Where("company_id = ? AND document_type = ?", companyID, s.DocType).First(&existing).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			if err != nil {
				return err
			}
			continue
		}

		seq := models.DefaultSequence(companyID, s.DocType, s.Prefix)
		seq.LastResetYear = year
		if err := db.Create(&seq).Error; err != nil {
			return err
		}
	}
	return nil
}
