package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/database"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"engsupply-erp/types"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errSequenceContended = errors.New("numbering sequence changed concurrently")

type SequenceInput struct {
	DocumentType models.DocumentType `json:"document_type" validate:"required"`
	Prefix       string              `json:"prefix" validate:"max=20"`
	Suffix       string              `json:"suffix" validate:"max=20"`
	NextNumber   int64               `json:"next_number" validate:"gte=0"`
	Padding      int                 `json:"padding" validate:"gte=0,lte=12"`
	Separator    *string             `json:"separator" validate:"omitempty,max=1"`
	YearlyReset  *bool               `json:"yearly_reset"`
	MonthlyReset bool                `json:"monthly_reset"`
	IncludeYear  *bool               `json:"include_year"`
	IncludeMonth bool                `json:"include_month"`
}

type NumberingService struct {
	db         *gorm.DB
	repo       *repositories.NumberingRepository
	log        *zap.Logger
	maxRetries int
	now        func() time.Time
}

func NewNumberingService(db *gorm.DB, log *zap.Logger, maxRetries int) *NumberingService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &NumberingService{
		db:         db,
		repo:       repositories.NewNumberingRepository(db),
		log:        log,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Next issues the next document number in its own transaction.
func (s *NumberingService) Next(ctx context.Context, companyID types.SnowflakeID, docType models.DocumentType) (string, error) {
	var number string
	err := s.RunWithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			number, err = s.NextInTx(tx, companyID, docType)
			return err
		})
	})
	if err != nil {
		return "", err
	}

	s.log.Info("document number issued",
		zap.String("company_id", companyID.String()),
		zap.String("document_type", string(docType)),
		zap.String("number", number))
	return number, nil
}

// NextInTx issues a number inside the caller's transaction so the number and the
// document it belongs to commit or roll back together. Wrap the caller's
// transaction in RunWithRetry to replay it after a lost race.
func (s *NumberingService) NextInTx(tx *gorm.DB, companyID types.SnowflakeID, docType models.DocumentType) (string, error) {
	repo := s.repo.WithTx(tx)

	seq, err := repo.FindForUpdate(companyID, docType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.NotFound("numbering sequence", docType)
	}
	if err != nil {
		return "", err
	}
	if !seq.IsActive {
		return "", apperrors.Validation("numbering sequence %s is inactive", docType)
	}

	readVersion := seq.Version
	number := seq.Issue(s.now())

	ok, err := repo.Advance(seq, readVersion)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errSequenceContended
	}
	return number, nil
}

// RunWithRetry replays fn when it lost a race on a sequence row.
func (s *NumberingService) RunWithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = fn()
		if err == nil || !isContention(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("numbering contention, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	return apperrors.Conflict("could not issue a document number after %d attempts", s.maxRetries)
}

func isContention(err error) bool {
	return errors.Is(err, errSequenceContended) || database.IsRetryable(err) || database.IsDuplicateKey(err)
}

// EnsureSequence returns the sequence for docType, creating it with the defaults when missing.
func (s *NumberingService) EnsureSequence(tx *gorm.DB, companyID types.SnowflakeID, docType models.DocumentType, prefix string, actor types.SnowflakeID) (*models.NumberingSequence, error) {
	repo := s.repo.WithTx(tx)
	seq, err := repo.Find(companyID, docType)
	if err == nil {
		return seq, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.DefaultSequence(companyID, docType, prefix)
	created.LastResetYear = s.now().Year()
	created.LastResetMonth = int(s.now().Month())
	created.Stamp(actor)
	if err := repo.Create(&created); err != nil {
		return nil, err
	}
	s.log.Info("numbering sequence created",
		zap.String("company_id", companyID.String()),
		zap.String("document_type", string(docType)))
	return &created, nil
}

func (s *NumberingService) Preview(ctx context.Context, companyID types.SnowflakeID, docType models.DocumentType) (string, error) {
	seq, err := s.repo.WithTx(s.db.WithContext(ctx)).Find(companyID, docType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.NotFound("numbering sequence", docType)
	}
	if err != nil {
		return "", err
	}
	return seq.Preview(s.now()), nil
}

// Reset sets the next number to start (manual renumbering).
func (s *NumberingService) Reset(ctx context.Context, companyID types.SnowflakeID, docType models.DocumentType, start int64) error {
	if start < 1 {
		return apperrors.Validation("start number must be at least 1")
	}
	return s.RunWithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			seq, err := repo.FindForUpdate(companyID, docType)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("numbering sequence", docType)
			}
			if err != nil {
				return err
			}

			readVersion := seq.Version
			now := s.now()
			seq.NextNumber = start
			seq.LastResetYear = now.Year()
			seq.LastResetMonth = int(now.Month())
			ok, err := repo.Advance(seq, readVersion)
			if err != nil {
				return err
			}
			if !ok {
				return errSequenceContended
			}
			s.log.Info("numbering sequence reset",
				zap.String("document_type", string(docType)), zap.Int64("start", start))
			return nil
		})
	})
}

func (s *NumberingService) List(ctx context.Context, companyID types.SnowflakeID) ([]models.NumberingSequence, error) {
	return s.repo.WithTx(s.db.WithContext(ctx)).List(companyID)
}

func (s *NumberingService) Create(ctx context.Context, companyID, actor types.SnowflakeID, in SequenceInput) (*models.NumberingSequence, error) {
	if !in.DocumentType.Valid() {
		return nil, apperrors.Validation("unknown document type %q", in.DocumentType)
	}

	seq := models.DefaultSequence(companyID, in.DocumentType, in.Prefix)
	seq.Suffix = in.Suffix
	seq.MonthlyReset = in.MonthlyReset
	seq.IncludeMonth = in.IncludeMonth
	if in.NextNumber > 0 {
		seq.NextNumber = in.NextNumber
	}
	if in.Padding > 0 {
		seq.Padding = in.Padding
	}
	if in.Separator != nil {
		seq.Separator = *in.Separator
	}
	if in.YearlyReset != nil {
		seq.YearlyReset = *in.YearlyReset
	}
	if in.IncludeYear != nil {
		seq.IncludeYear = *in.IncludeYear
	}
	if err := validateSequence(&seq); err != nil {
		return nil, err
	}

	now := s.now()
	seq.LastResetYear = now.Year()
	seq.LastResetMonth = int(now.Month())
	seq.Stamp(actor)

	if err := s.repo.WithTx(s.db.WithContext(ctx)).Create(&seq); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("numbering sequence for %s already exists", in.DocumentType)
		}
		return nil, err
	}
	return &seq, nil
}

// Update changes the formatting settings of an existing sequence. The counter is left alone; use Reset for that.
func (s *NumberingService) Update(ctx context.Context, companyID, actor types.SnowflakeID, docType models.DocumentType, in SequenceInput) (*models.NumberingSequence, error) {
	repo := s.repo.WithTx(s.db.WithContext(ctx))
	seq, err := repo.Find(companyID, docType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("numbering sequence", docType)
	}
	if err != nil {
		return nil, err
	}

	seq.Prefix = in.Prefix
	seq.Suffix = in.Suffix
	seq.MonthlyReset = in.MonthlyReset
	seq.IncludeMonth = in.IncludeMonth
	if in.Padding > 0 {
		seq.Padding = in.Padding
	}
	if in.Separator != nil {
		seq.Separator = *in.Separator
	}
	if in.YearlyReset != nil {
		seq.YearlyReset = *in.YearlyReset
	}
	if in.IncludeYear != nil {
		seq.IncludeYear = *in.IncludeYear
	}
	if err := validateSequence(seq); err != nil {
		return nil, err
	}
	seq.UpdatedBy = actor
	if err := repo.UpdateSettings(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

func validateSequence(seq *models.NumberingSequence) error {
	if seq.Padding < 1 || seq.Padding > 12 {
		return apperrors.Validation("padding must be between 1 and 12")
	}
	if len(seq.Separator) > 1 {
		return apperrors.Validation("separator must be a single character")
	}
	if seq.MonthlyReset && !seq.IncludeMonth {
		return apperrors.Validation("monthly reset requires the month in the number")
	}
	return nil
}
