package repositories

import (
	"engsupply-erp/models"
	"engsupply-erp/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UomRepository struct {
	DB *gorm.DB
}

func NewUomRepository(DB *gorm.DB) *UomRepository {
	return &UomRepository{DB: DB}
}

func (r *UomRepository) WithTx(tx *gorm.DB) *UomRepository {
	return &UomRepository{DB: tx}
}

func (r *UomRepository) GetUom(companyID, id types.SnowflakeID) (*models.Uom, error) {
	var uom models.Uom
	err := r.DB.Preload("Group").Where("company_id = ? AND id = ?", companyID, id).First(&uom).Error
	return &uom, err
}

func (r *UomRepository) GetUomByCode(companyID types.SnowflakeID, code string) (*models.Uom, error) {
	var uom models.Uom
	err := r.DB.Preload("Group").Where("company_id = ? AND code = ?", companyID, code).First(&uom).Error
	return &uom, err
}

func (r *UomRepository) GetGroup(companyID, id types.SnowflakeID) (*models.UomGroup, error) {
	var group models.UomGroup
	err := r.DB.Preload("BaseUom").Where("company_id = ? AND id = ?", companyID, id).First(&group).Error
	return &group, err
}

func (r *UomRepository) GetGroupByCode(companyID types.SnowflakeID, code string) (*models.UomGroup, error) {
	var group models.UomGroup
	err := r.DB.Preload("BaseUom").Where("company_id = ? AND code = ?", companyID, code).First(&group).Error
	return &group, err
}

func (r *UomRepository) ListGroups(companyID types.SnowflakeID, activeOnly bool) ([]models.UomGroup, error) {
	var groups []models.UomGroup
	q := r.DB.Preload("BaseUom").
		Preload("Units", func(db *gorm.DB) *gorm.DB { return db.Order("code ASC") }).
		Where("company_id = ?", companyID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("code ASC").Find(&groups).Error
	return groups, err
}

func (r *UomRepository) CreateGroup(group *models.UomGroup) error {
	return r.DB.Omit(clause.Associations).Create(group).Error
}

func (r *UomRepository) SetBaseUom(group *models.UomGroup, uomID types.SnowflakeID) error {
	group.BaseUomID = &uomID
	return r.DB.Model(group).Update("base_uom_id", uomID).Error
}

func (r *UomRepository) CreateUom(uom *models.Uom) error {
	return r.DB.Omit(clause.Associations).Create(uom).Error
}

// FindConversion mencari konversi persis untuk kombinasi (from_uom, item, variant); nil berarti NULL.
func (r *UomRepository) FindConversion(companyID, fromUomID types.SnowflakeID, itemID, variantID *types.SnowflakeID) (*models.UomConversion, error) {
	var conv models.UomConversion
	q := r.DB.Where("company_id = ? AND from_uom_id = ?", companyID, fromUomID)
	if itemID != nil {
		q = q.Where("item_id = ?", *itemID)
	} else {
		q = q.Where("item_id IS NULL")
	}
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}
	err := q.First(&conv).Error
	return &conv, err
}

func (r *UomRepository) CreateConversion(conv *models.UomConversion) error {
	return r.DB.Omit(clause.Associations).Create(conv).Error
}

func (r *UomRepository) UpdateConversion(conv *models.UomConversion) error {
	return r.DB.Model(conv).
		Select("conversion_factor", "formula_expression", "notes", "is_active", "updated_at", "updated_by").
		Updates(conv).Error
}

// GlobalConversionsForGroup: konversi tanpa item/variant untuk semua unit dalam grup.
func (r *UomRepository) GlobalConversionsForGroup(companyID, groupID types.SnowflakeID) ([]models.UomConversion, error) {
	var convs []models.UomConversion
	err := r.DB.Select("uom_conversions.*").
		Preload("FromUom").
		Joins("JOIN uoms ON uoms.id = uom_conversions.from_uom_id").
		Where("uom_conversions.company_id = ? AND uoms.group_id = ?", companyID, groupID).
		Where("uom_conversions.item_id IS NULL AND uom_conversions.variant_id IS NULL").
		Order("uoms.code ASC").
		Find(&convs).Error
	return convs, err
}

func (r *UomRepository) CountConversionsForGroup(companyID, groupID types.SnowflakeID) (int64, error) {
	var count int64
	err := r.DB.Model(&models.UomConversion{}).
		Joins("JOIN uoms ON uoms.id = uom_conversions.from_uom_id").
		Where("uom_conversions.company_id = ? AND uoms.group_id = ?", companyID, groupID).
		Count(&count).Error
	return count, err
}
