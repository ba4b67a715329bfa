package models

import (
	"engsupply-erp/types"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var hundred = decimal.NewFromInt(100)

type PriceList struct {
	BaseModel
	CompanyID types.SnowflakeID `json:"company_id" gorm:"not null;uniqueIndex:idx_price_list_company_code"`
	Code      string            `json:"code" gorm:"size:20;not null;uniqueIndex:idx_price_list_company_code"`
	Name      string            `json:"name" gorm:"size:100;not null"`
	Currency  string            `json:"currency" gorm:"size:3;not null"`
	IsDefault bool              `json:"is_default" gorm:"not null"`
	IsActive  bool              `json:"is_active" gorm:"not null"`
	Items     []PriceListItem   `json:"items,omitempty" gorm:"foreignKey:PriceListID"`
}

type PriceListItem struct {
	BaseModel
	CompanyID   types.SnowflakeID  `json:"company_id" gorm:"not null;index"`
	PriceListID types.SnowflakeID  `json:"price_list_id" gorm:"not null;index:idx_price_item_lookup"`
	PriceList   *PriceList         `json:"price_list,omitempty" gorm:"foreignKey:PriceListID"`
	ItemID      types.SnowflakeID  `json:"item_id" gorm:"not null;index:idx_price_item_lookup"`
	Item        *Item              `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	VariantID   *types.SnowflakeID `json:"variant_id"`
	UomID       *types.SnowflakeID `json:"uom_id"`
	Uom         *Uom               `json:"uom,omitempty" gorm:"foreignKey:UomID"`
	Price       decimal.Decimal    `json:"price" gorm:"type:decimal(15,3);not null"`
	MinQuantity decimal.Decimal    `json:"min_quantity" gorm:"type:decimal(12,3);not null"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	IsActive    bool               `json:"is_active" gorm:"not null"`
}

func (p *PriceListItem) ValidOn(date time.Time) bool {
	return p.IsActive && ActiveOn(p.StartDate, p.EndDate, date)
}

type PriceHistory struct {
	BaseModel
	PriceListItemID  types.SnowflakeID `json:"price_list_item_id" gorm:"not null;index"`
	OldPrice         decimal.Decimal   `json:"old_price" gorm:"type:decimal(15,3);not null"`
	NewPrice         decimal.Decimal   `json:"new_price" gorm:"type:decimal(15,3);not null"`
	ChangePercentage decimal.Decimal   `json:"change_percentage" gorm:"type:decimal(9,2);not null"`
	ChangeReason     string            `json:"change_reason" gorm:"size:255"`
	ChangedBy        types.SnowflakeID `json:"changed_by"`
	ChangedAt        time.Time         `json:"changed_at" gorm:"not null"`
}

// ChangePercent returns (new-old)/old*100 rounded to 2 places, zero when old is zero.
func ChangePercent(oldPrice, newPrice decimal.Decimal) decimal.Decimal {
	if oldPrice.IsZero() {
		return decimal.Zero
	}
	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(hundred).Round(2)
}

type RuleType string

const (
	RuleMarkupPercentage   RuleType = "MARKUP_PERCENTAGE"
	RuleDiscountPercentage RuleType = "DISCOUNT_PERCENTAGE"
	RulePriceFormula       RuleType = "PRICE_FORMULA"
	RuleBulkDiscount       RuleType = "BULK_DISCOUNT"
	RuleSeasonalPricing    RuleType = "SEASONAL_PRICING"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleMarkupPercentage, RuleDiscountPercentage, RulePriceFormula, RuleBulkDiscount, RuleSeasonalPricing:
		return true
	}
	return false
}

// PriceFormula: price = basis * Multiplier + Add, basis is the cost when Base == "cost".
type PriceFormula struct {
	Base       string          `json:"base"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Add        decimal.Decimal `json:"add"`
}

type PricingRule struct {
	BaseModel
	CompanyID       types.SnowflakeID                  `json:"company_id" gorm:"not null;uniqueIndex:idx_rule_company_code"`
	Code            string                             `json:"code" gorm:"size:50;not null;uniqueIndex:idx_rule_company_code"`
	Name            string                             `json:"name" gorm:"size:200;not null"`
	Description     string                             `json:"description" gorm:"type:text"`
	RuleType        RuleType                           `json:"rule_type" gorm:"size:30;not null"`
	PercentageValue decimal.NullDecimal                `json:"percentage_value" gorm:"type:decimal(7,3)"`
	Formula         datatypes.JSONType[*PriceFormula] `json:"formula"`
	MinQuantity     decimal.NullDecimal                `json:"min_quantity" gorm:"type:decimal(12,3)"`
	MaxQuantity     decimal.NullDecimal                `json:"max_quantity" gorm:"type:decimal(12,3)"`
	ApplyToAllItems bool                               `json:"apply_to_all_items" gorm:"not null"`
	Items           []Item                             `json:"items,omitempty" gorm:"many2many:pricing_rule_items;"`
	Categories      []ItemCategory                     `json:"categories,omitempty" gorm:"many2many:pricing_rule_categories;"`
	PriceLists      []PriceList                        `json:"price_lists,omitempty" gorm:"many2many:pricing_rule_price_lists;"`
	Priority        int                                `json:"priority" gorm:"not null;index"`
	StartDate       *time.Time                         `json:"start_date"`
	EndDate         *time.Time                         `json:"end_date"`
	IsActive        bool                               `json:"is_active" gorm:"not null"`
}

// QuantityAllows checks the optional [MinQuantity, MaxQuantity] window.
func (r *PricingRule) QuantityAllows(qty decimal.Decimal) bool {
	if r.MinQuantity.Valid && qty.LessThan(r.MinQuantity.Decimal) {
		return false
	}
	if r.MaxQuantity.Valid && !r.MaxQuantity.Decimal.IsZero() && qty.GreaterThan(r.MaxQuantity.Decimal) {
		return false
	}
	return true
}

func (r *PricingRule) ValidOn(date time.Time) bool {
	return r.IsActive && ActiveOn(r.StartDate, r.EndDate, date)
}

// Calculate applies the rule to basePrice. cost is the item (or variant) cost price when known.
// A quantity outside the rule window leaves the price untouched.
func (r *PricingRule) Calculate(basePrice, qty decimal.Decimal, cost decimal.NullDecimal) decimal.Decimal {
	if !r.QuantityAllows(qty) {
		return basePrice
	}
	pct := r.PercentageValue.Decimal

	switch r.RuleType {
	case RuleMarkupPercentage:
		basis := basePrice
		if cost.Valid && !cost.Decimal.IsZero() {
			basis = cost.Decimal
		}
		return basis.Mul(hundred.Add(pct)).Div(hundred)
	case RuleDiscountPercentage, RuleBulkDiscount, RuleSeasonalPricing:
		if !r.PercentageValue.Valid {
			return basePrice
		}
		return basePrice.Mul(hundred.Sub(pct)).Div(hundred)
	case RulePriceFormula:
		f := r.Formula.Data()
		if f == nil {
			return basePrice
		}
		multiplier := f.Multiplier
		if multiplier.IsZero() {
			multiplier = decimal.NewFromInt(1)
		}
		basis := basePrice
		if f.Base == "cost" && cost.Valid && !cost.Decimal.IsZero() {
			basis = cost.Decimal
		}
		return basis.Mul(multiplier).Add(f.Add)
	}
	return basePrice
}
