package models

import (
	"engsupply-erp/types"

	"github.com/shopspring/decimal"
)

// MaxConversionFactor batas atas faktor konversi (decimal(20,6) di database).
var MaxConversionFactor = decimal.RequireFromString("999999999999")

type UomGroup struct {
	BaseModel
	CompanyID    types.SnowflakeID  `json:"company_id" gorm:"not null;uniqueIndex:idx_uom_group_company_code"`
	Code         string             `json:"code" gorm:"size:20;not null;uniqueIndex:idx_uom_group_company_code"`
	Name         string             `json:"name" gorm:"size:100;not null"`
	BaseUomID    *types.SnowflakeID `json:"base_uom_id"`
	BaseUom      *Uom               `json:"base_uom,omitempty" gorm:"foreignKey:BaseUomID"`
	AllowDecimal bool               `json:"allow_decimal" gorm:"not null"`
	Notes        string             `json:"notes" gorm:"type:text"`
	IsActive     bool               `json:"is_active" gorm:"not null"`
	Units        []Uom              `json:"units,omitempty" gorm:"foreignKey:GroupID"`
}

type Uom struct {
	BaseModel
	CompanyID         types.SnowflakeID  `json:"company_id" gorm:"not null;uniqueIndex:idx_uom_company_code"`
	Code              string             `json:"code" gorm:"size:10;not null;uniqueIndex:idx_uom_company_code"`
	Name              string             `json:"name" gorm:"size:50;not null"`
	Symbol            string             `json:"symbol" gorm:"size:10"`
	GroupID           *types.SnowflakeID `json:"group_id" gorm:"index"`
	Group             *UomGroup          `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	RoundingPrecision decimal.Decimal    `json:"rounding_precision" gorm:"type:decimal(10,6);not null"`
	IsActive          bool               `json:"is_active" gorm:"not null"`
}

// Round membulatkan qty ke kelipatan RoundingPrecision (half-up).
func (u *Uom) Round(qty decimal.Decimal) decimal.Decimal {
	precision := u.RoundingPrecision
	if precision.LessThanOrEqual(decimal.Zero) {
		return qty
	}
	return qty.Div(precision).Round(0).Mul(precision)
}

type UomConversion struct {
	BaseModel
	CompanyID         types.SnowflakeID  `json:"company_id" gorm:"not null;index:idx_uom_conversion_lookup"`
	FromUomID         types.SnowflakeID  `json:"from_uom_id" gorm:"not null;index:idx_uom_conversion_lookup"`
	FromUom           *Uom               `json:"from_uom,omitempty" gorm:"foreignKey:FromUomID"`
	ItemID            *types.SnowflakeID `json:"item_id"`
	Item              *Item              `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	VariantID         *types.SnowflakeID `json:"variant_id"`
	Variant           *ItemVariant       `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
	ConversionFactor  decimal.Decimal    `json:"conversion_factor" gorm:"type:decimal(20,6);not null"`
	FormulaExpression string             `json:"formula_expression" gorm:"size:200"`
	Notes             string             `json:"notes" gorm:"type:text"`
	IsActive          bool               `json:"is_active" gorm:"not null"`
}

// Scope describes what the conversion applies to, as shown in the export "Type" column.
func (c *UomConversion) Scope() string {
	switch {
	case c.VariantID != nil:
		return "Variant"
	case c.ItemID != nil:
		return "Item"
	default:
		return "Global"
	}
}
