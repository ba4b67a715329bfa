package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/database"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"engsupply-erp/types"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	pricePlaces     = 3
	defaultPriority = 10
)

type PriceQuery struct {
	ItemID      types.SnowflakeID  `json:"item_id" validate:"required"`
	VariantID   *types.SnowflakeID `json:"variant_id"`
	UomID       *types.SnowflakeID `json:"uom_id"`
	Quantity    decimal.Decimal    `json:"quantity"`
	PriceListID *types.SnowflakeID `json:"price_list_id"`
	Date        *time.Time         `json:"date"`
	ApplyRules  *bool              `json:"apply_rules"`
}

type PriceStep struct {
	Step        string          `json:"step"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type AppliedRule struct {
	ID       types.SnowflakeID `json:"id"`
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	RuleType models.RuleType   `json:"rule_type"`
}

type PriceListRef struct {
	ID   types.SnowflakeID `json:"id"`
	Code string            `json:"code"`
	Name string            `json:"name"`
}

type PriceResult struct {
	PriceList               PriceListRef        `json:"price_list"`
	Currency                string              `json:"currency"`
	Quantity                decimal.Decimal     `json:"quantity"`
	BasePrice               decimal.Decimal     `json:"base_price"`
	FinalPrice              decimal.Decimal     `json:"final_price"`
	AppliedRule             *AppliedRule        `json:"applied_rule"`
	UomConversion           decimal.NullDecimal `json:"uom_conversion"`
	TotalDiscount           decimal.Decimal     `json:"total_discount"`
	TotalDiscountPercentage decimal.Decimal     `json:"total_discount_percentage"`
	Steps                   []PriceStep         `json:"steps"`
}

type PriceComparison struct {
	Results    []PriceResult       `json:"results"`
	Lowest     decimal.NullDecimal `json:"lowest"`
	Highest    decimal.NullDecimal `json:"highest"`
	Difference decimal.Decimal     `json:"difference"`
}

type PriceItemInput struct {
	ItemID      types.SnowflakeID  `json:"item_id" validate:"required"`
	VariantID   *types.SnowflakeID `json:"variant_id"`
	UomID       *types.SnowflakeID `json:"uom_id"`
	Price       decimal.Decimal    `json:"price"`
	MinQuantity decimal.Decimal    `json:"min_quantity"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
}

type PriceListInput struct {
	Code      string           `json:"code" validate:"required,max=20"`
	Name      string           `json:"name" validate:"required,max=100"`
	Currency  string           `json:"currency" validate:"omitempty,len=3"`
	IsDefault bool             `json:"is_default"`
	Items     []PriceItemInput `json:"items" validate:"dive"`
}

type RuleInput struct {
	Code            string               `json:"code" validate:"required,max=50"`
	Name            string               `json:"name" validate:"required,max=200"`
	Description     string               `json:"description"`
	RuleType        models.RuleType      `json:"rule_type" validate:"required"`
	PercentageValue decimal.NullDecimal  `json:"percentage_value"`
	Formula         *models.PriceFormula `json:"formula"`
	MinQuantity     decimal.NullDecimal  `json:"min_quantity"`
	MaxQuantity     decimal.NullDecimal  `json:"max_quantity"`
	ApplyToAllItems bool                 `json:"apply_to_all_items"`
	ItemIDs         []types.SnowflakeID  `json:"item_ids"`
	CategoryIDs     []types.SnowflakeID  `json:"category_ids"`
	PriceListIDs    []types.SnowflakeID  `json:"price_list_ids"`
	Priority        *int                 `json:"priority"`
	StartDate       *time.Time           `json:"start_date"`
	EndDate         *time.Time           `json:"end_date"`
}

type PricingService struct {
	db   *gorm.DB
	repo *repositories.PricingRepository
	uoms *repositories.UomRepository
	conv *UomService
	log  *zap.Logger
	now  func() time.Time
}

func NewPricingService(db *gorm.DB, conv *UomService, log *zap.Logger) *PricingService {
	return &PricingService{
		db:   db,
		repo: repositories.NewPricingRepository(db),
		uoms: repositories.NewUomRepository(db),
		conv: conv,
		log:  log,
		now:  time.Now,
	}
}

// CalculatePrice: harga dasar dari price list, lalu rule dengan prioritas tertinggi,
// lalu konversi satuan, dibulatkan 3 desimal.
func (s *PricingService) CalculatePrice(ctx context.Context, companyID types.SnowflakeID, q PriceQuery) (*PriceResult, error) {
	db := s.db.WithContext(ctx)
	repo := s.repo.WithTx(db)

	qty := q.Quantity
	if qty.IsZero() {
		qty = one
	}
	if qty.IsNegative() {
		return nil, apperrors.Validation("quantity cannot be negative")
	}
	date := s.now()
	if q.Date != nil {
		date = *q.Date
	}

	item, err := repo.GetItem(companyID, q.ItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("item", q.ItemID)
	}
	if err != nil {
		return nil, err
	}
	cost := item.CostPrice
	if q.VariantID != nil {
		variant, err := repo.GetVariant(item.ID, *q.VariantID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("item variant", *q.VariantID)
		}
		if err != nil {
			return nil, err
		}
		if variant.CostPrice.Valid {
			cost = variant.CostPrice
		}
	}

	pl, err := s.resolvePriceList(db, companyID, q.PriceListID)
	if err != nil {
		return nil, err
	}

	row, fromBase, err := s.basePriceRow(db, pl, item, q.VariantID, q.UomID, qty, date)
	if err != nil {
		return nil, err
	}
	// Cost price is per base unit; a row priced in another unit needs the cost in that unit.
	if !fromBase && cost.Valid && row.UomID != nil {
		_, factor, err := s.unitFactor(db, companyID, *row.UomID, item, q.VariantID)
		if err != nil {
			return nil, err
		}
		cost = decimal.NewNullDecimal(cost.Decimal.Mul(factor))
	}

	result := &PriceResult{
		PriceList: PriceListRef{ID: pl.ID, Code: pl.Code, Name: pl.Name},
		Currency:  pl.Currency,
		Quantity:  qty,
		BasePrice: row.Price,
	}
	price := row.Price
	result.Steps = append(result.Steps, PriceStep{
		Step:        "base_price",
		Description: fmt.Sprintf("price list %s, min quantity %s", pl.Code, row.MinQuantity),
		Price:       price,
	})

	if q.ApplyRules == nil || *q.ApplyRules {
		rule, err := s.winningRule(db, companyID, item, pl.ID, qty, date)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			price = rule.Calculate(price, qty, cost)
			result.AppliedRule = &AppliedRule{ID: rule.ID, Code: rule.Code, Name: rule.Name, RuleType: rule.RuleType}
			result.Steps = append(result.Steps, PriceStep{
				Step:        "pricing_rule",
				Description: fmt.Sprintf("%s (%s)", rule.Code, rule.RuleType),
				Price:       price,
			})
		}
	}

	listPrice := row.Price
	if fromBase && q.UomID != nil && item.BaseUomID != nil && *q.UomID != *item.BaseUomID {
		uom, factor, err := s.unitFactor(db, companyID, *q.UomID, item, q.VariantID)
		if err != nil {
			return nil, err
		}
		price = price.Mul(factor)
		listPrice = listPrice.Mul(factor)
		result.UomConversion = decimal.NewNullDecimal(factor)
		result.Steps = append(result.Steps, PriceStep{
			Step:        "uom_conversion",
			Description: fmt.Sprintf("1 %s = %s base units", uom.Code, factor),
			Price:       price,
		})
	}

	result.FinalPrice = price.Round(pricePlaces)
	result.TotalDiscount = listPrice.Sub(result.FinalPrice).Round(pricePlaces)
	if listPrice.IsPositive() {
		result.TotalDiscountPercentage = result.TotalDiscount.Div(listPrice).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return result, nil
}

// unitFactor: berapa base unit item dalam satu uomID.
func (s *PricingService) unitFactor(db *gorm.DB, companyID, uomID types.SnowflakeID, item *models.Item, variantID *types.SnowflakeID) (*models.Uom, decimal.Decimal, error) {
	uom, err := s.uoms.WithTx(db).GetUom(companyID, uomID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, decimal.Zero, apperrors.NotFound("unit of measure", uomID)
	}
	if err != nil {
		return nil, decimal.Zero, err
	}
	factor, err := s.conv.FactorToBase(db, uom, &item.ID, variantID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return uom, factor, nil
}

func (s *PricingService) resolvePriceList(db *gorm.DB, companyID types.SnowflakeID, id *types.SnowflakeID) (*models.PriceList, error) {
	repo := s.repo.WithTx(db)
	if id != nil {
		pl, err := repo.GetPriceList(companyID, *id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("price list", *id)
		}
		if err != nil {
			return nil, err
		}
		if !pl.IsActive {
			return nil, apperrors.Validation("price list %s is inactive", pl.Code)
		}
		return pl, nil
	}
	pl, err := repo.DefaultPriceList(companyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Validation("no active price list")
	}
	return pl, err
}

// basePriceRow picks the price row. fromBase reports whether it is priced in
// the item's base unit (or carries no unit), i.e. still needs converting.
func (s *PricingService) basePriceRow(db *gorm.DB, pl *models.PriceList, item *models.Item, variantID, uomID *types.SnowflakeID, qty decimal.Decimal, date time.Time) (*models.PriceListItem, bool, error) {
	repo := s.repo.WithTx(db)

	type lookup struct {
		uom      *types.SnowflakeID
		fromBase bool
	}
	var lookups []lookup
	if uomID != nil {
		lookups = append(lookups, lookup{uomID, item.BaseUomID != nil && *uomID == *item.BaseUomID})
	}
	if item.BaseUomID != nil && (uomID == nil || *uomID != *item.BaseUomID) {
		lookups = append(lookups, lookup{item.BaseUomID, true})
	}
	lookups = append(lookups, lookup{nil, true})

	variants := []*types.SnowflakeID{nil}
	if variantID != nil {
		variants = []*types.SnowflakeID{variantID, nil}
	}

	for _, v := range variants {
		for _, l := range lookups {
			rows, err := repo.PriceRows(pl.ID, item.ID, v, l.uom)
			if err != nil {
				return nil, false, err
			}
			for i := range rows {
				if rows[i].MinQuantity.LessThanOrEqual(qty) && rows[i].ValidOn(date) {
					return &rows[i], l.fromBase, nil
				}
			}
		}
	}
	return nil, false, apperrors.NotFound("price for item", fmt.Sprintf("%s in price list %s", item.Code, pl.Code))
}

// winningRule: rule aktif yang berlaku, urut priority lalu id; yang pertama menang.
func (s *PricingService) winningRule(db *gorm.DB, companyID types.SnowflakeID, item *models.Item, priceListID types.SnowflakeID, qty decimal.Decimal, date time.Time) (*models.PricingRule, error) {
	repo := s.repo.WithTx(db)
	rules, err := repo.ActiveRules(companyID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	chain, err := repo.CategoryChain(item.CategoryID)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(rules, func(a, b models.PricingRule) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	for i := range rules {
		if ruleApplies(&rules[i], item.ID, chain, priceListID, qty, date) {
			return &rules[i], nil
		}
	}
	return nil, nil
}

func ruleApplies(rule *models.PricingRule, itemID types.SnowflakeID, categoryChain []types.SnowflakeID, priceListID types.SnowflakeID, qty decimal.Decimal, date time.Time) bool {
	if !rule.ValidOn(date) || !rule.QuantityAllows(qty) {
		return false
	}
	if len(rule.PriceLists) > 0 && !slices.ContainsFunc(rule.PriceLists, func(pl models.PriceList) bool { return pl.ID == priceListID }) {
		return false
	}
	if rule.ApplyToAllItems {
		return true
	}
	if slices.ContainsFunc(rule.Items, func(it models.Item) bool { return it.ID == itemID }) {
		return true
	}
	return slices.ContainsFunc(rule.Categories, func(c models.ItemCategory) bool {
		return slices.Contains(categoryChain, c.ID)
	})
}

// ComparePriceLists menghitung harga di semua price list aktif, urut dari termurah.
func (s *PricingService) ComparePriceLists(ctx context.Context, companyID types.SnowflakeID, q PriceQuery) (*PriceComparison, error) {
	lists, err := s.repo.WithTx(s.db.WithContext(ctx)).ListPriceLists(companyID, true)
	if err != nil {
		return nil, err
	}

	cmp := &PriceComparison{}
	for _, pl := range lists {
		id := pl.ID
		q.PriceListID = &id
		res, err := s.CalculatePrice(ctx, companyID, q)
		if apperrors.Is(err, apperrors.KindNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cmp.Results = append(cmp.Results, *res)
	}

	slices.SortStableFunc(cmp.Results, func(a, b PriceResult) int {
		return a.FinalPrice.Cmp(b.FinalPrice)
	})
	if n := len(cmp.Results); n > 0 {
		cmp.Lowest = decimal.NewNullDecimal(cmp.Results[0].FinalPrice)
		cmp.Highest = decimal.NewNullDecimal(cmp.Results[n-1].FinalPrice)
		cmp.Difference = cmp.Highest.Decimal.Sub(cmp.Lowest.Decimal)
	}
	return cmp, nil
}

// Price lists

func (s *PricingService) ListPriceLists(ctx context.Context, companyID types.SnowflakeID) ([]models.PriceList, error) {
	return s.repo.WithTx(s.db.WithContext(ctx)).ListPriceLists(companyID, false)
}

func (s *PricingService) CreatePriceList(ctx context.Context, companyID, actor types.SnowflakeID, in PriceListInput) (*models.PriceList, error) {
	pl := models.PriceList{
		CompanyID: companyID,
		Code:      strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:      strings.TrimSpace(in.Name),
		Currency:  strings.ToUpper(in.Currency),
		IsActive:  true,
	}
	if pl.Code == "" || pl.Name == "" {
		return nil, apperrors.Validation("price list code and name are required")
	}
	if pl.Currency == "" {
		pl.Currency = "SAR"
	}
	pl.Stamp(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePriceList(&pl); err != nil {
			if database.IsDuplicateKey(err) {
				return apperrors.Conflict("price list %s already exists", pl.Code)
			}
			return err
		}
		if in.IsDefault {
			if err := repo.SetDefault(&pl); err != nil {
				return err
			}
		}
		for _, it := range in.Items {
			if _, err := s.addPriceItem(tx, &pl, actor, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("price list created", zap.String("code", pl.Code), zap.Int("items", len(in.Items)))
	return &pl, nil
}

func (s *PricingService) AddPriceItem(ctx context.Context, companyID, priceListID, actor types.SnowflakeID, in PriceItemInput) (*models.PriceListItem, error) {
	var row *models.PriceListItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pl, err := s.repo.WithTx(tx).GetPriceList(companyID, priceListID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("price list", priceListID)
		}
		if err != nil {
			return err
		}
		row, err = s.addPriceItem(tx, pl, actor, in)
		return err
	})
	return row, err
}

func (s *PricingService) addPriceItem(tx *gorm.DB, pl *models.PriceList, actor types.SnowflakeID, in PriceItemInput) (*models.PriceListItem, error) {
	if in.Price.IsNegative() {
		return nil, apperrors.Validation("price cannot be negative")
	}
	minQty := in.MinQuantity
	if minQty.IsZero() {
		minQty = one
	}
	if minQty.IsNegative() {
		return nil, apperrors.Validation("minimum quantity cannot be negative")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, apperrors.Validation("end date is before start date")
	}
	if _, err := s.repo.WithTx(tx).GetItem(pl.CompanyID, in.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("item", in.ItemID)
		}
		return nil, err
	}

	row := models.PriceListItem{
		CompanyID:   pl.CompanyID,
		PriceListID: pl.ID,
		ItemID:      in.ItemID,
		VariantID:   in.VariantID,
		UomID:       in.UomID,
		Price:       in.Price,
		MinQuantity: minQty,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsActive:    true,
	}
	row.Stamp(actor)
	if err := s.repo.WithTx(tx).CreatePriceItem(&row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *PricingService) SetDefault(ctx context.Context, companyID, id types.SnowflakeID) (*models.PriceList, error) {
	var pl *models.PriceList
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		pl, err = repo.GetPriceList(companyID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("price list", id)
		}
		if err != nil {
			return err
		}
		if !pl.IsActive {
			return apperrors.Validation("inactive price list %s cannot be the default", pl.Code)
		}
		return repo.SetDefault(pl)
	})
	return pl, err
}

// UpdateItemPrice mengubah harga dan mencatat PriceHistory dalam satu transaksi.
func (s *PricingService) UpdateItemPrice(ctx context.Context, companyID, priceItemID, actor types.SnowflakeID, newPrice decimal.Decimal, reason string) (*models.PriceHistory, error) {
	if newPrice.IsNegative() {
		return nil, apperrors.Validation("price cannot be negative")
	}
	var h models.PriceHistory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.GetPriceItem(companyID, priceItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("price list item", priceItemID)
		}
		if err != nil {
			return err
		}
		if row.Price.Equal(newPrice) {
			return apperrors.Validation("new price equals the current price")
		}

		h = models.PriceHistory{
			PriceListItemID:  row.ID,
			OldPrice:         row.Price,
			NewPrice:         newPrice,
			ChangePercentage: models.ChangePercent(row.Price, newPrice),
			ChangeReason:     strings.TrimSpace(reason),
			ChangedBy:        actor,
			ChangedAt:        s.now(),
		}
		h.Stamp(actor)

		row.Price = newPrice
		row.UpdatedBy = actor
		if err := repo.UpdatePrice(row); err != nil {
			return err
		}
		return repo.AppendPriceHistory(&h)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("price updated",
		zap.String("price_list_item_id", priceItemID.String()),
		zap.String("old", h.OldPrice.String()),
		zap.String("new", h.NewPrice.String()))
	return &h, nil
}

func (s *PricingService) PriceHistory(ctx context.Context, companyID, priceItemID types.SnowflakeID) ([]models.PriceHistory, error) {
	repo := s.repo.WithTx(s.db.WithContext(ctx))
	if _, err := repo.GetPriceItem(companyID, priceItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("price list item", priceItemID)
		}
		return nil, err
	}
	return repo.PriceHistory(priceItemID)
}

// Rules

func (s *PricingService) ListRules(ctx context.Context, companyID types.SnowflakeID) ([]models.PricingRule, error) {
	return s.repo.WithTx(s.db.WithContext(ctx)).ListRules(companyID)
}

func (s *PricingService) CreateRule(ctx context.Context, companyID, actor types.SnowflakeID, in RuleInput) (*models.PricingRule, error) {
	if err := validateRule(in); err != nil {
		return nil, err
	}

	rule := models.PricingRule{
		CompanyID:       companyID,
		Code:            strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		RuleType:        in.RuleType,
		PercentageValue: in.PercentageValue,
		MinQuantity:     in.MinQuantity,
		MaxQuantity:     in.MaxQuantity,
		ApplyToAllItems: in.ApplyToAllItems,
		Priority:        defaultPriority,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		IsActive:        true,
	}
	if in.Formula != nil {
		rule.Formula = datatypes.NewJSONType(in.Formula)
	}
	if in.Priority != nil {
		rule.Priority = *in.Priority
	}
	rule.Stamp(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if rule.Items, err = repo.ItemsByIDs(companyID, in.ItemIDs); err != nil {
			return err
		}
		if len(rule.Items) != len(in.ItemIDs) {
			return apperrors.Validation("one or more items do not exist")
		}
		if rule.Categories, err = repo.CategoriesByIDs(companyID, in.CategoryIDs); err != nil {
			return err
		}
		if len(rule.Categories) != len(in.CategoryIDs) {
			return apperrors.Validation("one or more categories do not exist")
		}
		if rule.PriceLists, err = repo.PriceListsByIDs(companyID, in.PriceListIDs); err != nil {
			return err
		}
		if len(rule.PriceLists) != len(in.PriceListIDs) {
			return apperrors.Validation("one or more price lists do not exist")
		}
		if !rule.ApplyToAllItems && len(rule.Items) == 0 && len(rule.Categories) == 0 {
			return apperrors.Validation("rule must apply to all items or name items or categories")
		}

		if err := repo.CreateRule(&rule); err != nil {
			if database.IsDuplicateKey(err) {
				return apperrors.Conflict("pricing rule %s already exists", rule.Code)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pricing rule created", zap.String("code", rule.Code), zap.String("type", string(rule.RuleType)))
	return &rule, nil
}

func validateRule(in RuleInput) error {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return apperrors.Validation("rule code and name are required")
	}
	if !in.RuleType.Valid() {
		return apperrors.Validation("unknown rule type %q", in.RuleType)
	}
	switch in.RuleType {
	case models.RulePriceFormula:
		if in.Formula == nil {
			return apperrors.Validation("a price formula rule needs a formula")
		}
		if in.Formula.Base != "" && in.Formula.Base != "cost" && in.Formula.Base != "price" {
			return apperrors.Validation("formula base must be cost or price")
		}
	case models.RuleMarkupPercentage:
		if !in.PercentageValue.Valid || in.PercentageValue.Decimal.IsNegative() {
			return apperrors.Validation("markup percentage must be zero or more")
		}
	default:
		if !in.PercentageValue.Valid || in.PercentageValue.Decimal.IsNegative() ||
			in.PercentageValue.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return apperrors.Validation("discount percentage must be between 0 and 100")
		}
	}
	if in.MinQuantity.Valid && in.MaxQuantity.Valid && !in.MaxQuantity.Decimal.IsZero() &&
		in.MinQuantity.Decimal.GreaterThan(in.MaxQuantity.Decimal) {
		return apperrors.Validation("min quantity must not exceed max quantity")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return apperrors.Validation("end date is before start date")
	}
	return nil
}
