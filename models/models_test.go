package models

import (
	"engsupply-erp/types"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func TestSequenceFormat(t *testing.T) {
	at := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)

	seq := DefaultSequence(1, DocSalesInvoice, "INV")
	assert.Equal(t, "INV/2025/000042", seq.Format(42, at))

	seq = NumberingSequence{Prefix: "JV", Suffix: "HQ", Padding: 4, IncludeYear: true, IncludeMonth: true, Separator: "-"}
	assert.Equal(t, "JV-2025-07-0001-HQ", seq.Format(1, at))

	seq = NumberingSequence{Padding: 3}
	assert.Equal(t, "1234", seq.Format(1234, at), "padding never truncates")
}

func TestSequenceIssueResets(t *testing.T) {
	seq := DefaultSequence(1, DocSalesInvoice, "INV")
	dec2024 := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	jan2025 := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, "INV/2024/000001", seq.Issue(dec2024))
	assert.Equal(t, "INV/2024/000002", seq.Issue(dec2024))
	assert.Equal(t, "INV/2025/000001", seq.Issue(jan2025))
	assert.Equal(t, int64(2), seq.NextNumber)

	monthly := NumberingSequence{Prefix: "JV", Padding: 2, IncludeYear: true, IncludeMonth: true, MonthlyReset: true, Separator: "-", NextNumber: 1}
	assert.Equal(t, "JV-2025-01-01", monthly.Issue(jan2025))
	assert.Equal(t, "JV-2025-01-02", monthly.Issue(jan2025))
	assert.Equal(t, "JV-2025-02-01", monthly.Issue(jan2025.AddDate(0, 1, 0)))
}

func TestSequencePreviewHasNoSideEffects(t *testing.T) {
	seq := DefaultSequence(1, DocStockIn, "SI")
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "SI/2025/000001", seq.Preview(now))
	assert.Equal(t, "SI/2025/000001", seq.Preview(now))
	assert.Equal(t, int64(1), seq.NextNumber)
	assert.Zero(t, seq.LastResetYear)
}

func TestLevelAcceptsAmount(t *testing.T) {
	tests := []struct {
		name     string
		from, to decimal.NullDecimal
		amount   string
		want     bool
	}{
		{"unbounded", decimal.NullDecimal{}, decimal.NullDecimal{}, "1000000", true},
		{"upper bound inclusive", decimal.NullDecimal{}, nd("1000"), "1000", true},
		{"above upper", decimal.NullDecimal{}, nd("1000"), "1000.01", false},
		{"lower bound inclusive", nd("1000.01"), decimal.NullDecimal{}, "1000.01", true},
		{"below lower", nd("1000.01"), decimal.NullDecimal{}, "1000", false},
		{"zero upper means unbounded", decimal.NullDecimal{}, nd("0"), "5", true},
		{"inside range", nd("10"), nd("20"), "15", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ApprovalLevel{AmountFrom: tt.from, AmountTo: tt.to}
			assert.Equal(t, tt.want, l.AcceptsAmount(d(tt.amount)))
		})
	}
}

func TestRequestHasAmount(t *testing.T) {
	assert.False(t, (&ApprovalRequest{}).HasAmount())
	assert.False(t, (&ApprovalRequest{Amount: nd("0")}).HasAmount())
	assert.True(t, (&ApprovalRequest{Amount: nd("0.5")}).HasAmount())
}

func TestDocumentRefValidate(t *testing.T) {
	assert.NoError(t, DocumentRef{Kind: KindAssetLease, RecordID: 5}.Validate())
	assert.Error(t, DocumentRef{Kind: "invoice", RecordID: 5}.Validate())
	assert.Error(t, DocumentRef{Kind: KindAssetLease}.Validate())
}

func TestRuleCalculate(t *testing.T) {
	cost := nd("60")
	tests := []struct {
		name string
		rule PricingRule
		base string
		qty  string
		cost decimal.NullDecimal
		want string
	}{
		{"discount", PricingRule{RuleType: RuleDiscountPercentage, PercentageValue: nd("10")}, "100", "1", cost, "90"},
		{"markup on cost", PricingRule{RuleType: RuleMarkupPercentage, PercentageValue: nd("25")}, "100", "1", cost, "75"},
		{"markup without cost", PricingRule{RuleType: RuleMarkupPercentage, PercentageValue: nd("25")}, "100", "1", decimal.NullDecimal{}, "125"},
		{"bulk below threshold", PricingRule{RuleType: RuleBulkDiscount, PercentageValue: nd("5"), MinQuantity: nd("10")}, "100", "9", cost, "100"},
		{"bulk at threshold", PricingRule{RuleType: RuleBulkDiscount, PercentageValue: nd("5"), MinQuantity: nd("10")}, "100", "10", cost, "95"},
		{"seasonal", PricingRule{RuleType: RuleSeasonalPricing, PercentageValue: nd("30")}, "50", "1", cost, "35"},
		{"discount without value", PricingRule{RuleType: RuleDiscountPercentage}, "50", "1", cost, "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Calculate(d(tt.base), d(tt.qty), tt.cost)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestRuleValidOn(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	r := PricingRule{IsActive: true, StartDate: &start, EndDate: &end}

	assert.True(t, r.ValidOn(time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC)), "end date counts the whole day")
	assert.False(t, r.ValidOn(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.ValidOn(time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)))

	r.IsActive = false
	assert.False(t, r.ValidOn(start))
}

func TestChangePercent(t *testing.T) {
	assert.True(t, ChangePercent(d("10"), d("12")).Equal(d("20")))
	assert.True(t, ChangePercent(d("3"), d("2")).Equal(d("-33.33")))
	assert.True(t, ChangePercent(d("0"), d("5")).IsZero())
}

func TestUomRound(t *testing.T) {
	u := Uom{RoundingPrecision: d("0.01")}
	assert.True(t, u.Round(d("1.005")).Equal(d("1.01")))
	assert.True(t, u.Round(d("1.004")).Equal(d("1")))

	none := Uom{}
	assert.True(t, none.Round(d("1.23456")).Equal(d("1.23456")))
}

func TestConversionScope(t *testing.T) {
	item, variant := types.SnowflakeID(1), types.SnowflakeID(2)
	assert.Equal(t, "Global", (&UomConversion{}).Scope())
	assert.Equal(t, "Item", (&UomConversion{ItemID: &item}).Scope())
	assert.Equal(t, "Variant", (&UomConversion{ItemID: &item, VariantID: &variant}).Scope())
}
