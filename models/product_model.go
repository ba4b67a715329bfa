package models

import (
	"engsupply-erp/types"

	"github.com/shopspring/decimal"
)

type ItemCategory struct {
	BaseModel
	CompanyID types.SnowflakeID  `json:"company_id" gorm:"not null;uniqueIndex:idx_category_company_code"`
	Code      string             `json:"code" gorm:"size:50;not null;uniqueIndex:idx_category_company_code"`
	Name      string             `json:"name" gorm:"size:200;not null"`
	ParentID  *types.SnowflakeID `json:"parent_id" gorm:"index"`
	IsActive  bool               `json:"is_active" gorm:"not null"`
}

type Item struct {
	BaseModel
	CompanyID   types.SnowflakeID   `json:"company_id" gorm:"not null;uniqueIndex:idx_item_company_code"`
	Code        string              `json:"code" gorm:"size:50;not null;uniqueIndex:idx_item_company_code"`
	Name        string              `json:"name" gorm:"size:200;not null"`
	CategoryID  *types.SnowflakeID  `json:"category_id" gorm:"index"`
	Category    *ItemCategory       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	BaseUomID   *types.SnowflakeID  `json:"base_uom_id"`
	BaseUom     *Uom                `json:"base_uom,omitempty" gorm:"foreignKey:BaseUomID"`
	CostPrice   decimal.NullDecimal `json:"cost_price" gorm:"type:decimal(15,3)"`
	HasVariants bool                `json:"has_variants" gorm:"not null"`
	IsActive    bool                `json:"is_active" gorm:"not null"`
}

type ItemVariant struct {
	BaseModel
	CompanyID types.SnowflakeID   `json:"company_id" gorm:"not null;index"`
	ItemID    types.SnowflakeID   `json:"item_id" gorm:"not null;uniqueIndex:idx_variant_item_code"`
	Item      *Item               `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Code      string              `json:"code" gorm:"size:50;not null;uniqueIndex:idx_variant_item_code"`
	Name      string              `json:"name" gorm:"size:200"`
	CostPrice decimal.NullDecimal `json:"cost_price" gorm:"type:decimal(15,3)"`
	IsActive  bool                `json:"is_active" gorm:"not null"`
}
