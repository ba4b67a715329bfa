package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/models"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createInvoiceSequence(t *testing.T, env *testEnv) *models.NumberingSequence {
	t.Helper()
	seq, err := env.numbering.Create(context.Background(), env.company.ID, 0, SequenceInput{
		DocumentType: models.DocSalesInvoice,
		Prefix:       "INV",
	})
	require.NoError(t, err)
	return seq
}

func TestNumberingNextIsSequentialAndPadded(t *testing.T) {
	env := newTestEnv(t)
	env.at(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	createInvoiceSequence(t, env)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		number, err := env.numbering.Next(ctx, env.company.ID, models.DocSalesInvoice)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV/2025/%06d", i), number)
	}
}

func TestNumberingPreviewDoesNotAdvance(t *testing.T) {
	env := newTestEnv(t)
	env.at(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	createInvoiceSequence(t, env)
	ctx := context.Background()

	preview, err := env.numbering.Preview(ctx, env.company.ID, models.DocSalesInvoice)
	require.NoError(t, err)
	again, err := env.numbering.Preview(ctx, env.company.ID, models.DocSalesInvoice)
	require.NoError(t, err)
	assert.Equal(t, preview, again)

	issued, err := env.numbering.Next(ctx, env.company.ID, models.DocSalesInvoice)
	require.NoError(t, err)
	assert.Equal(t, preview, issued)
}

func TestNumberingYearlyResetRestartsAtOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.at(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	createInvoiceSequence(t, env)
	for i := 0; i < 3; i++ {
		_, err := env.numbering.Next(ctx, env.company.ID, models.DocSalesInvoice)
		require.NoError(t, err)
	}

	env.at(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	number, err := env.numbering.Next(ctx, env.company.ID, models.DocSalesInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV/2025/000001", number)
}

func TestNumberingMonthlyFormat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.at(time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))

	sep := "-"
	_, err := env.numbering.Create(ctx, env.company.ID, 0, SequenceInput{
		DocumentType: models.DocJournalEntry,
		Prefix:       "JV",
		Padding:      4,
		Separator:    &sep,
		MonthlyReset: true,
		IncludeMonth: true,
	})
	require.NoError(t, err)

	number, err := env.numbering.Next(ctx, env.company.ID, models.DocJournalEntry)
	require.NoError(t, err)
	assert.Equal(t, "JV-2025-07-0001", number)

	env.at(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	number, err = env.numbering.Next(ctx, env.company.ID, models.DocJournalEntry)
	require.NoError(t, err)
	assert.Equal(t, "JV-2025-08-0001", number)
}

func TestNumberingErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.numbering.Next(ctx, env.company.ID, models.DocPurchaseOrder)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	seq := createInvoiceSequence(t, env)
	require.NoError(t, env.db.Model(seq).Update("is_active", false).Error)
	_, err = env.numbering.Next(ctx, env.company.ID, models.DocSalesInvoice)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = env.numbering.Create(ctx, env.company.ID, 0, SequenceInput{DocumentType: models.DocSalesInvoice, Prefix: "X"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	_, err = env.numbering.Create(ctx, env.company.ID, 0, SequenceInput{DocumentType: "unknown"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = env.numbering.Create(ctx, env.company.ID, 0, SequenceInput{DocumentType: models.DocStockIn, MonthlyReset: true})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestNumberingReset(t *testing.T) {
	env := newTestEnv(t)
	env.at(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	createInvoiceSequence(t, env)
	ctx := context.Background()

	require.NoError(t, env.numbering.Reset(ctx, env.company.ID, models.DocSalesInvoice, 500))
	number, err := env.numbering.Next(ctx, env.company.ID, models.DocSalesInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV/2025/000500", number)

	err = env.numbering.Reset(ctx, env.company.ID, models.DocSalesInvoice, 0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestNumberingRetryGivesUpAfterMaxRetries(t *testing.T) {
	env := newTestEnv(t)
	calls := 0
	err := env.numbering.RunWithRetry(context.Background(), func() error {
		calls++
		return errSequenceContended
	})
	assert.Equal(t, 3, calls)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestEnsureSequenceCreatesOnce(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.numbering.EnsureSequence(env.db, env.company.ID, models.DocApprovalRequest, "APR", 0)
	require.NoError(t, err)
	second, err := env.numbering.EnsureSequence(env.db, env.company.ID, models.DocApprovalRequest, "APR", 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "APR", second.Prefix)
	assert.Equal(t, 6, second.Padding)
}
