package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/database/dbtest"
	"engsupply-erp/models"
	"engsupply-erp/types"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type pricingFixture struct {
	env    *testEnv
	pcs    *models.Uom
	box    *models.Uom
	item   *models.Item
	retail *models.PriceList
	row    *models.PriceListItem
}

// newPricingFixture: item BOLT (base PCS, cost 6), 1 BOX = 12 PCS,
// default price list RETAIL at 10 per piece and 9 per piece from 100 pieces.
func newPricingFixture(t *testing.T) *pricingFixture {
	t.Helper()
	env := newTestEnv(t)
	cid := env.company.ID
	f := &pricingFixture{env: env}

	group, pcs := dbtest.UomGroup(t, env.db, cid, "COUNT", "PCS")
	f.pcs = pcs
	f.box = dbtest.Uom(t, env.db, cid, group, "BOX", "1")
	dbtest.Conversion(t, env.db, cid, f.box, "12")
	f.item = dbtest.Item(t, env.db, cid, "BOLT", pcs, "6")

	pl, err := env.pricing.CreatePriceList(context.Background(), cid, 0, PriceListInput{
		Code:      "retail",
		Name:      "Retail",
		IsDefault: true,
		Items: []PriceItemInput{
			{ItemID: f.item.ID, UomID: &pcs.ID, Price: dec("10")},
			{ItemID: f.item.ID, UomID: &pcs.ID, Price: dec("9"), MinQuantity: dec("100")},
		},
	})
	require.NoError(t, err)
	f.retail = pl

	rows, err := env.pricing.repo.PriceRows(pl.ID, f.item.ID, nil, &pcs.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	f.row = &rows[1] // min quantity 1
	return f
}

func (f *pricingFixture) price(t *testing.T, q PriceQuery) *PriceResult {
	t.Helper()
	q.ItemID = f.item.ID
	res, err := f.env.pricing.CalculatePrice(context.Background(), f.env.company.ID, q)
	require.NoError(t, err)
	return res
}

func (f *pricingFixture) rule(t *testing.T, in RuleInput) *models.PricingRule {
	t.Helper()
	rule, err := f.env.pricing.CreateRule(context.Background(), f.env.company.ID, 0, in)
	require.NoError(t, err)
	return rule
}

func TestCreatePriceListNormalizes(t *testing.T) {
	f := newPricingFixture(t)

	assert.Equal(t, "RETAIL", f.retail.Code)
	assert.Equal(t, "SAR", f.retail.Currency)
	assert.True(t, f.retail.IsDefault)
	assert.True(t, f.row.MinQuantity.Equal(dec("1")))

	_, err := f.env.pricing.CreatePriceList(context.Background(), f.env.company.ID, 0, PriceListInput{Code: "Retail", Name: "again"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestCalculatePriceFromDefaultList(t *testing.T) {
	f := newPricingFixture(t)

	res := f.price(t, PriceQuery{Quantity: dec("5")})
	assert.Equal(t, "RETAIL", res.PriceList.Code)
	assert.True(t, res.BasePrice.Equal(dec("10")), res.BasePrice.String())
	assert.True(t, res.FinalPrice.Equal(dec("10")))
	assert.Nil(t, res.AppliedRule)
	assert.False(t, res.UomConversion.Valid)
	assert.Len(t, res.Steps, 1)

	// quantity zero counts as one
	res = f.price(t, PriceQuery{})
	assert.True(t, res.Quantity.Equal(dec("1")))

	_, err := f.env.pricing.CalculatePrice(context.Background(), f.env.company.ID, PriceQuery{ItemID: f.item.ID, Quantity: dec("-1")})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestCalculatePriceUsesQuantityTier(t *testing.T) {
	f := newPricingFixture(t)

	res := f.price(t, PriceQuery{Quantity: dec("150")})
	assert.True(t, res.BasePrice.Equal(dec("9")), res.BasePrice.String())

	res = f.price(t, PriceQuery{Quantity: dec("99")})
	assert.True(t, res.BasePrice.Equal(dec("10")), res.BasePrice.String())
}

func TestCalculatePriceConvertsUnit(t *testing.T) {
	f := newPricingFixture(t)

	res := f.price(t, PriceQuery{UomID: &f.box.ID, Quantity: dec("1")})
	require.True(t, res.UomConversion.Valid)
	assert.True(t, res.UomConversion.Decimal.Equal(dec("12")))
	assert.True(t, res.FinalPrice.Equal(dec("120")), res.FinalPrice.String())
	assert.True(t, res.TotalDiscount.IsZero())
	assert.Equal(t, "uom_conversion", res.Steps[len(res.Steps)-1].Step)
}

func TestRulePriorityDecides(t *testing.T) {
	f := newPricingFixture(t)
	low, high := 5, 20

	f.rule(t, RuleInput{
		Code: "d20", Name: "Twenty off", RuleType: models.RuleDiscountPercentage,
		PercentageValue: amount("20"), ApplyToAllItems: true, Priority: &high,
	})
	winner := f.rule(t, RuleInput{
		Code: "d10", Name: "Ten off", RuleType: models.RuleDiscountPercentage,
		PercentageValue: amount("10"), ItemIDs: []types.SnowflakeID{f.item.ID}, Priority: &low,
	})

	res := f.price(t, PriceQuery{Quantity: dec("2")})
	require.NotNil(t, res.AppliedRule)
	assert.Equal(t, winner.ID, res.AppliedRule.ID)
	assert.Equal(t, "D10", res.AppliedRule.Code)
	assert.True(t, res.FinalPrice.Equal(dec("9")), res.FinalPrice.String())
	assert.True(t, res.TotalDiscount.Equal(dec("1")))
	assert.True(t, res.TotalDiscountPercentage.Equal(dec("10")))

	off := false
	res = f.price(t, PriceQuery{Quantity: dec("2"), ApplyRules: &off})
	assert.Nil(t, res.AppliedRule)
	assert.True(t, res.FinalPrice.Equal(dec("10")))
}

func TestMarkupUsesCostPrice(t *testing.T) {
	f := newPricingFixture(t)
	f.rule(t, RuleInput{
		Code: "m50", Name: "Cost plus", RuleType: models.RuleMarkupPercentage,
		PercentageValue: amount("50"), ApplyToAllItems: true,
	})

	res := f.price(t, PriceQuery{Quantity: dec("1")})
	assert.True(t, res.FinalPrice.Equal(dec("9")), res.FinalPrice.String())
}

func TestCostRulesOnUnitPriceRow(t *testing.T) {
	f := newPricingFixture(t)
	_, err := f.env.pricing.AddPriceItem(context.Background(), f.env.company.ID, f.retail.ID, 0, PriceItemInput{
		ItemID: f.item.ID, UomID: &f.box.ID, Price: dec("110"),
	})
	require.NoError(t, err)
	markup := f.rule(t, RuleInput{
		Code: "m50", Name: "Cost plus", RuleType: models.RuleMarkupPercentage,
		PercentageValue: amount("50"), ApplyToAllItems: true,
	})

	// 6 per PCS, 12 PCS per BOX
	res := f.price(t, PriceQuery{UomID: &f.box.ID, Quantity: dec("1")})
	assert.True(t, res.BasePrice.Equal(dec("110")))
	assert.True(t, res.FinalPrice.Equal(dec("108")), res.FinalPrice.String())
	assert.False(t, res.UomConversion.Valid)

	require.NoError(t, f.env.db.Model(markup).Update("is_active", false).Error)
	f.rule(t, RuleInput{
		Code: "f", Name: "Cost formula", RuleType: models.RulePriceFormula, ApplyToAllItems: true,
		Formula: &models.PriceFormula{Base: "cost", Multiplier: dec("2"), Add: dec("1")},
	})
	res = f.price(t, PriceQuery{UomID: &f.box.ID, Quantity: dec("1")})
	assert.True(t, res.FinalPrice.Equal(dec("145")), res.FinalPrice.String())
}

func TestRuleWindowsAndScope(t *testing.T) {
	f := newPricingFixture(t)
	f.env.at(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	f.rule(t, RuleInput{
		Code: "summer", Name: "Summer", RuleType: models.RuleSeasonalPricing,
		PercentageValue: amount("15"), ApplyToAllItems: true, StartDate: &start, EndDate: &end,
	})
	f.rule(t, RuleInput{
		Code: "bulk", Name: "Bulk", RuleType: models.RuleBulkDiscount,
		PercentageValue: amount("5"), ApplyToAllItems: true, MinQuantity: amount("50"),
	})

	res := f.price(t, PriceQuery{Quantity: dec("10")})
	assert.Nil(t, res.AppliedRule, "outside the season and below the bulk threshold")

	res = f.price(t, PriceQuery{Quantity: dec("60")})
	require.NotNil(t, res.AppliedRule)
	assert.Equal(t, "BULK", res.AppliedRule.Code)
	assert.True(t, res.FinalPrice.Equal(dec("9.5")), res.FinalPrice.String())

	july := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	res = f.price(t, PriceQuery{Quantity: dec("10"), Date: &july})
	require.NotNil(t, res.AppliedRule)
	assert.Equal(t, "SUMMER", res.AppliedRule.Code)
	assert.True(t, res.FinalPrice.Equal(dec("8.5")), res.FinalPrice.String())
}

func TestCategoryRuleMatchesParentCategory(t *testing.T) {
	f := newPricingFixture(t)
	cid := f.env.company.ID

	parent := &models.ItemCategory{CompanyID: cid, Code: "HW", Name: "Hardware", IsActive: true}
	require.NoError(t, f.env.db.Create(parent).Error)
	child := &models.ItemCategory{CompanyID: cid, Code: "FAST", Name: "Fasteners", ParentID: &parent.ID, IsActive: true}
	require.NoError(t, f.env.db.Create(child).Error)
	require.NoError(t, f.env.db.Model(f.item).Update("category_id", child.ID).Error)

	f.rule(t, RuleInput{
		Code: "hw", Name: "Hardware sale", RuleType: models.RuleDiscountPercentage,
		PercentageValue: amount("50"), CategoryIDs: []types.SnowflakeID{parent.ID},
	})

	res := f.price(t, PriceQuery{Quantity: dec("1")})
	require.NotNil(t, res.AppliedRule)
	assert.True(t, res.FinalPrice.Equal(dec("5")))
}

func TestCreateRuleValidation(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()
	cid := f.env.company.ID

	cases := map[string]RuleInput{
		"unknown type":      {Code: "x", Name: "x", RuleType: "FREE", ApplyToAllItems: true},
		"discount over 100": {Code: "x", Name: "x", RuleType: models.RuleDiscountPercentage, PercentageValue: amount("120"), ApplyToAllItems: true},
		"negative markup":   {Code: "x", Name: "x", RuleType: models.RuleMarkupPercentage, PercentageValue: amount("-1"), ApplyToAllItems: true},
		"formula missing":   {Code: "x", Name: "x", RuleType: models.RulePriceFormula, ApplyToAllItems: true},
		"no scope":          {Code: "x", Name: "x", RuleType: models.RuleDiscountPercentage, PercentageValue: amount("5")},
		"unknown item":      {Code: "x", Name: "x", RuleType: models.RuleDiscountPercentage, PercentageValue: amount("5"), ItemIDs: []types.SnowflakeID{12345}},
		"min above max": {Code: "x", Name: "x", RuleType: models.RuleBulkDiscount, PercentageValue: amount("5"), ApplyToAllItems: true,
			MinQuantity: amount("10"), MaxQuantity: amount("5")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.env.pricing.CreateRule(ctx, cid, 0, in)
			assert.True(t, apperrors.Is(err, apperrors.KindValidation), "got %v", err)
		})
	}
}

func TestPriceFormulaRule(t *testing.T) {
	f := newPricingFixture(t)
	f.rule(t, RuleInput{
		Code: "f", Name: "Cost formula", RuleType: models.RulePriceFormula, ApplyToAllItems: true,
		Formula: &models.PriceFormula{Base: "cost", Multiplier: dec("2"), Add: dec("0.5")},
	})

	res := f.price(t, PriceQuery{Quantity: dec("1")})
	assert.True(t, res.FinalPrice.Equal(dec("12.5")), res.FinalPrice.String())

	rules, err := f.env.pricing.ListRules(context.Background(), f.env.company.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.NotNil(t, rules[0].Formula.Data())
	assert.Equal(t, "cost", rules[0].Formula.Data().Base)
}

func TestComparePriceListsSortsCheapestFirst(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()
	cid := f.env.company.ID

	_, err := f.env.pricing.CreatePriceList(ctx, cid, 0, PriceListInput{
		Code: "WHOLESALE", Name: "Wholesale",
		Items: []PriceItemInput{{ItemID: f.item.ID, Price: dec("8")}},
	})
	require.NoError(t, err)
	// no price for the item here, left out of the comparison
	_, err = f.env.pricing.CreatePriceList(ctx, cid, 0, PriceListInput{Code: "EXPORT", Name: "Export", Currency: "usd"})
	require.NoError(t, err)

	cmp, err := f.env.pricing.ComparePriceLists(ctx, cid, PriceQuery{ItemID: f.item.ID, Quantity: dec("1")})
	require.NoError(t, err)
	require.Len(t, cmp.Results, 2)
	assert.Equal(t, "WHOLESALE", cmp.Results[0].PriceList.Code)
	assert.Equal(t, "RETAIL", cmp.Results[1].PriceList.Code)
	assert.True(t, cmp.Lowest.Decimal.Equal(dec("8")))
	assert.True(t, cmp.Highest.Decimal.Equal(dec("10")))
	assert.True(t, cmp.Difference.Equal(dec("2")))
}

func TestSetDefaultSwitchesPriceList(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()
	cid := f.env.company.ID

	wholesale, err := f.env.pricing.CreatePriceList(ctx, cid, 0, PriceListInput{
		Code: "WHOLESALE", Name: "Wholesale",
		Items: []PriceItemInput{{ItemID: f.item.ID, Price: dec("8")}},
	})
	require.NoError(t, err)

	_, err = f.env.pricing.SetDefault(ctx, cid, wholesale.ID)
	require.NoError(t, err)

	res := f.price(t, PriceQuery{Quantity: dec("1")})
	assert.Equal(t, "WHOLESALE", res.PriceList.Code)

	lists, err := f.env.pricing.ListPriceLists(ctx, cid)
	require.NoError(t, err)
	defaults := 0
	for _, pl := range lists {
		if pl.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestCalculatePriceWithoutPriceList(t *testing.T) {
	env := newTestEnv(t)
	item := dbtest.Item(t, env.db, env.company.ID, "LONE", nil, "")

	_, err := env.pricing.CalculatePrice(context.Background(), env.company.ID, PriceQuery{ItemID: item.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active price list")
}

func TestUpdateItemPriceWritesHistory(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()
	cid := f.env.company.ID

	h, err := f.env.pricing.UpdateItemPrice(ctx, cid, f.row.ID, 7, dec("12"), " supplier increase ")
	require.NoError(t, err)
	assert.True(t, h.OldPrice.Equal(dec("10")))
	assert.True(t, h.NewPrice.Equal(dec("12")))
	assert.True(t, h.ChangePercentage.Equal(dec("20")))
	assert.Equal(t, "supplier increase", h.ChangeReason)
	assert.Equal(t, types.SnowflakeID(7), h.ChangedBy)

	_, err = f.env.pricing.UpdateItemPrice(ctx, cid, f.row.ID, 7, dec("12"), "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	history, err := f.env.pricing.PriceHistory(ctx, cid, f.row.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	res := f.price(t, PriceQuery{Quantity: dec("1")})
	assert.True(t, res.BasePrice.Equal(dec("12")))
}
