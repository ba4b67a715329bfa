package repositories

import (
	"engsupply-erp/database"
	"engsupply-erp/models"
	"engsupply-erp/types"
	"time"

	"gorm.io/gorm"
)

type NumberingRepository struct {
	DB *gorm.DB
}

func NewNumberingRepository(DB *gorm.DB) *NumberingRepository {
	return &NumberingRepository{DB: DB}
}

func (r *NumberingRepository) WithTx(tx *gorm.DB) *NumberingRepository {
	return &NumberingRepository{DB: tx}
}

func (r *NumberingRepository) Find(companyID types.SnowflakeID, docType models.DocumentType) (*models.NumberingSequence, error) {
	var seq models.NumberingSequence
	err := r.DB.Where("company_id = ? AND document_type = ?", companyID, docType).First(&seq).Error
	return &seq, err
}

// FindForUpdate mengunci baris sequence sampai transaksi selesai.
func (r *NumberingRepository) FindForUpdate(companyID types.SnowflakeID, docType models.DocumentType) (*models.NumberingSequence, error) {
	var seq models.NumberingSequence
	err := database.LockForUpdate(r.DB).
		Where("company_id = ? AND document_type = ?", companyID, docType).
		First(&seq).Error
	return &seq, err
}

func (r *NumberingRepository) List(companyID types.SnowflakeID) ([]models.NumberingSequence, error) {
	var seqs []models.NumberingSequence
	err := r.DB.Where("company_id = ?", companyID).Order("document_type").Find(&seqs).Error
	return seqs, err
}

func (r *NumberingRepository) Create(seq *models.NumberingSequence) error {
	return r.DB.Create(seq).Error
}

// Advance menyimpan counter baru hanya kalau version belum berubah sejak dibaca.
// false berarti ada writer lain; caller harus mengulang.
func (r *NumberingRepository) Advance(seq *models.NumberingSequence, readVersion int64) (bool, error) {
	res := r.DB.Model(&models.NumberingSequence{}).
		Where("id = ? AND version = ?", seq.ID, readVersion).
		Updates(map[string]interface{}{
			"next_number":      seq.NextNumber,
			"last_reset_year":  seq.LastResetYear,
			"last_reset_month": seq.LastResetMonth,
			"version":          readVersion + 1,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		seq.Version = readVersion + 1
		return true, nil
	}
	return false, nil
}

func (r *NumberingRepository) UpdateSettings(seq *models.NumberingSequence) error {
	return r.DB.Model(seq).
		Select("prefix", "suffix", "padding", "separator", "yearly_reset", "monthly_reset",
			"include_year", "include_month", "is_active", "updated_by").
		Updates(seq).Error
}
