package repositories

import (
	"engsupply-erp/models"
	"engsupply-erp/types"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxCategoryDepth membatasi penelusuran parent kategori (melindungi dari data siklik).
const maxCategoryDepth = 32

type PricingRepository struct {
	DB *gorm.DB
}

func NewPricingRepository(DB *gorm.DB) *PricingRepository {
	return &PricingRepository{DB: DB}
}

func (r *PricingRepository) WithTx(tx *gorm.DB) *PricingRepository {
	return &PricingRepository{DB: tx}
}

func (r *PricingRepository) GetItem(companyID, id types.SnowflakeID) (*models.Item, error) {
	var item models.Item
	err := r.DB.Where("company_id = ? AND id = ?", companyID, id).First(&item).Error
	return &item, err
}

func (r *PricingRepository) GetVariant(itemID, id types.SnowflakeID) (*models.ItemVariant, error) {
	var variant models.ItemVariant
	err := r.DB.Where("item_id = ? AND id = ?", itemID, id).First(&variant).Error
	return &variant, err
}

// CategoryChain returns the category id followed by its ancestors, nearest first.
func (r *PricingRepository) CategoryChain(categoryID *types.SnowflakeID) ([]types.SnowflakeID, error) {
	var chain []types.SnowflakeID
	seen := map[types.SnowflakeID]bool{}
	current := categoryID
	for current != nil && len(chain) < maxCategoryDepth && !seen[*current] {
		seen[*current] = true
		chain = append(chain, *current)

		var cat models.ItemCategory
		if err := r.DB.Select("id", "parent_id").First(&cat, "id = ?", *current).Error; err != nil {
			return nil, err
		}
		current = cat.ParentID
	}
	return chain, nil
}

// Price lists

func (r *PricingRepository) CreatePriceList(pl *models.PriceList) error {
	return r.DB.Omit(clause.Associations).Create(pl).Error
}

func (r *PricingRepository) GetPriceList(companyID, id types.SnowflakeID) (*models.PriceList, error) {
	var pl models.PriceList
	err := r.DB.Where("company_id = ? AND id = ?", companyID, id).First(&pl).Error
	return &pl, err
}

func (r *PricingRepository) ListPriceLists(companyID types.SnowflakeID, activeOnly bool) ([]models.PriceList, error) {
	var lists []models.PriceList
	q := r.DB.Where("company_id = ?", companyID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("is_default DESC, code ASC").Find(&lists).Error
	return lists, err
}

// DefaultPriceList jatuh ke list aktif pertama kalau belum ada default.
func (r *PricingRepository) DefaultPriceList(companyID types.SnowflakeID) (*models.PriceList, error) {
	var pl models.PriceList
	err := r.DB.Where("company_id = ? AND is_active = ? AND is_default = ?", companyID, true, true).First(&pl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = r.DB.Where("company_id = ? AND is_active = ?", companyID, true).Order("code ASC").First(&pl).Error
	}
	return &pl, err
}

// SetDefault menjadikan satu list sebagai default dan mencabut default list lain di company yang sama.
func (r *PricingRepository) SetDefault(pl *models.PriceList) error {
	if err := r.DB.Model(&models.PriceList{}).
		Where("company_id = ? AND id <> ? AND is_default = ?", pl.CompanyID, pl.ID, true).
		Update("is_default", false).Error; err != nil {
		return err
	}
	pl.IsDefault = true
	return r.DB.Model(pl).Update("is_default", true).Error
}

// Price list items

func (r *PricingRepository) CreatePriceItem(item *models.PriceListItem) error {
	return r.DB.Omit(clause.Associations).Create(item).Error
}

func (r *PricingRepository) GetPriceItem(companyID, id types.SnowflakeID) (*models.PriceListItem, error) {
	var item models.PriceListItem
	err := r.DB.Where("company_id = ? AND id = ?", companyID, id).First(&item).Error
	return &item, err
}

func (r *PricingRepository) UpdatePrice(item *models.PriceListItem) error {
	return r.DB.Model(item).Select("price", "updated_at", "updated_by").Updates(item).Error
}

// PriceRows: baris harga untuk item/variant dan satuan tertentu (nil = baris tanpa satuan),
// urut min_quantity turun. Filter tanggal dan kuantitas dilakukan caller.
func (r *PricingRepository) PriceRows(priceListID, itemID types.SnowflakeID, variantID, uomID *types.SnowflakeID) ([]models.PriceListItem, error) {
	var rows []models.PriceListItem
	q := r.DB.Where("price_list_id = ? AND item_id = ? AND is_active = ?", priceListID, itemID, true)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}
	if uomID != nil {
		q = q.Where("uom_id = ?", *uomID)
	} else {
		q = q.Where("uom_id IS NULL")
	}
	err := q.Order("min_quantity DESC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *PricingRepository) AppendPriceHistory(h *models.PriceHistory) error {
	return r.DB.Create(h).Error
}

func (r *PricingRepository) PriceHistory(priceItemID types.SnowflakeID) ([]models.PriceHistory, error) {
	var rows []models.PriceHistory
	err := r.DB.Where("price_list_item_id = ?", priceItemID).Order("changed_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

// Pricing rules

// CreateRule menyimpan rule dan relasi many2many (item, kategori, price list) yang sudah ada.
func (r *PricingRepository) CreateRule(rule *models.PricingRule) error {
	return r.DB.Omit("Items.*", "Categories.*", "PriceLists.*").Create(rule).Error
}

// ActiveRules urut priority naik lalu id (urutan pembuatan).
func (r *PricingRepository) ActiveRules(companyID types.SnowflakeID) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := r.DB.Preload("Items").Preload("Categories").Preload("PriceLists").
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("priority ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *PricingRepository) ListRules(companyID types.SnowflakeID) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := r.DB.Preload("Items").Preload("Categories").Preload("PriceLists").
		Where("company_id = ?", companyID).
		Order("priority ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *PricingRepository) ItemsByIDs(companyID types.SnowflakeID, ids []types.SnowflakeID) ([]models.Item, error) {
	var items []models.Item
	if len(ids) == 0 {
		return items, nil
	}
	err := r.DB.Where("company_id = ? AND id IN ?", companyID, ids).Find(&items).Error
	return items, err
}

func (r *PricingRepository) CategoriesByIDs(companyID types.SnowflakeID, ids []types.SnowflakeID) ([]models.ItemCategory, error) {
	var cats []models.ItemCategory
	if len(ids) == 0 {
		return cats, nil
	}
	err := r.DB.Where("company_id = ? AND id IN ?", companyID, ids).Find(&cats).Error
	return cats, err
}

func (r *PricingRepository) PriceListsByIDs(companyID types.SnowflakeID, ids []types.SnowflakeID) ([]models.PriceList, error) {
	var lists []models.PriceList
	if len(ids) == 0 {
		return lists, nil
	}
	err := r.DB.Where("company_id = ? AND id IN ?", companyID, ids).Find(&lists).Error
	return lists, err
}
