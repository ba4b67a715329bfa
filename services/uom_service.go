package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"engsupply-erp/types"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var one = decimal.NewFromInt(1)

type ConversionInput struct {
	FromUomID         types.SnowflakeID  `json:"from_uom_id" validate:"required"`
	ItemID            *types.SnowflakeID `json:"item_id"`
	VariantID         *types.SnowflakeID `json:"variant_id"`
	ConversionFactor  decimal.Decimal    `json:"conversion_factor"`
	FormulaExpression string             `json:"formula_expression" validate:"max=200"`
	Notes             string             `json:"notes"`
}

type UomService struct {
	db    *gorm.DB
	repo  *repositories.UomRepository
	items *repositories.PricingRepository
	log   *zap.Logger
}

func NewUomService(db *gorm.DB, log *zap.Logger) *UomService {
	return &UomService{
		db:    db,
		repo:  repositories.NewUomRepository(db),
		items: repositories.NewPricingRepository(db),
		log:   log,
	}
}

func (s *UomService) ListGroups(ctx context.Context, companyID types.SnowflakeID) ([]models.UomGroup, error) {
	return s.repo.WithTx(s.db.WithContext(ctx)).ListGroups(companyID, false)
}

func (s *UomService) getUom(tx *gorm.DB, companyID, id types.SnowflakeID) (*models.Uom, error) {
	uom, err := s.repo.WithTx(tx).GetUom(companyID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("unit of measure", id)
	}
	return uom, err
}

// ValidateConversion checks conv against the unit, item and variant it points at.
func (s *UomService) ValidateConversion(tx *gorm.DB, conv *models.UomConversion) error {
	if !conv.ConversionFactor.IsPositive() {
		return apperrors.Validation("conversion factor must be greater than zero")
	}
	if conv.ConversionFactor.GreaterThan(models.MaxConversionFactor) {
		return apperrors.Validation("conversion factor must not exceed %s", models.MaxConversionFactor)
	}

	from, err := s.getUom(tx, conv.CompanyID, conv.FromUomID)
	if err != nil {
		return err
	}
	if !from.IsActive {
		return apperrors.Validation("unit %s is inactive", from.Code)
	}
	if from.Group == nil || from.Group.BaseUomID == nil {
		return apperrors.Validation("unit %s has no group with a base unit", from.Code)
	}
	if *from.Group.BaseUomID == from.ID {
		return apperrors.Validation("unit %s is the base unit of %s and cannot be converted to itself", from.Code, from.Group.Code)
	}

	if conv.VariantID != nil && conv.ItemID == nil {
		return apperrors.Validation("a variant conversion needs its item")
	}
	if conv.ItemID != nil {
		items := s.items.WithTx(tx)
		item, err := items.GetItem(conv.CompanyID, *conv.ItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("item", *conv.ItemID)
		}
		if err != nil {
			return err
		}
		if item.BaseUomID == nil {
			return apperrors.Validation("item %s has no base unit", item.Code)
		}
		base, err := s.getUom(tx, conv.CompanyID, *item.BaseUomID)
		if err != nil {
			return err
		}
		if base.GroupID == nil || *base.GroupID != *from.GroupID {
			return apperrors.Validation("unit %s is not in the same group as the base unit of item %s", from.Code, item.Code)
		}
		if conv.VariantID != nil {
			if _, err := items.GetVariant(item.ID, *conv.VariantID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("item variant", *conv.VariantID)
				}
				return err
			}
		}
	}

	existing, err := s.repo.WithTx(tx).FindConversion(conv.CompanyID, conv.FromUomID, conv.ItemID, conv.VariantID)
	if err == nil && existing.ID != conv.ID {
		return apperrors.Conflict("a conversion from %s already exists for this scope", from.Code)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *UomService) CreateConversion(ctx context.Context, companyID, actor types.SnowflakeID, in ConversionInput) (*models.UomConversion, error) {
	conv := models.UomConversion{
		CompanyID:         companyID,
		FromUomID:         in.FromUomID,
		ItemID:            in.ItemID,
		VariantID:         in.VariantID,
		ConversionFactor:  in.ConversionFactor,
		FormulaExpression: strings.TrimSpace(in.FormulaExpression),
		Notes:             in.Notes,
		IsActive:          true,
	}
	conv.Stamp(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ValidateConversion(tx, &conv); err != nil {
			return err
		}
		return s.repo.WithTx(tx).CreateConversion(&conv)
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FactorToBase returns how many base units one uom is worth. Lookup order:
// variant conversion, item conversion, global conversion.
func (s *UomService) FactorToBase(tx *gorm.DB, uom *models.Uom, itemID, variantID *types.SnowflakeID) (decimal.Decimal, error) {
	if uom.Group == nil || uom.Group.BaseUomID == nil {
		return decimal.Zero, apperrors.Validation("unit %s has no group with a base unit", uom.Code)
	}
	if *uom.Group.BaseUomID == uom.ID {
		return one, nil
	}

	type scope struct{ item, variant *types.SnowflakeID }
	var scopes []scope
	if itemID != nil && variantID != nil {
		scopes = append(scopes, scope{itemID, variantID})
	}
	if itemID != nil {
		scopes = append(scopes, scope{itemID, nil})
	}
	scopes = append(scopes, scope{nil, nil})

	repo := s.repo.WithTx(tx)
	for _, sc := range scopes {
		conv, err := repo.FindConversion(uom.CompanyID, uom.ID, sc.item, sc.variant)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		if conv.IsActive {
			return conv.ConversionFactor, nil
		}
	}
	return decimal.Zero, apperrors.Validation("no conversion from %s to the base unit of %s", uom.Code, uom.Group.Code)
}

// Convert menghitung qty dari satuan from ke satuan to lewat base unit grup,
// lalu dibulatkan ke RoundingPrecision satuan tujuan.
func (s *UomService) Convert(ctx context.Context, companyID, fromID, toID types.SnowflakeID, qty decimal.Decimal, itemID, variantID *types.SnowflakeID) (decimal.Decimal, error) {
	tx := s.db.WithContext(ctx)
	from, err := s.getUom(tx, companyID, fromID)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := s.getUom(tx, companyID, toID)
	if err != nil {
		return decimal.Zero, err
	}
	if from.ID == to.ID {
		return to.Round(qty), nil
	}
	if from.GroupID == nil || to.GroupID == nil || *from.GroupID != *to.GroupID {
		return decimal.Zero, apperrors.Validation("cannot convert %s to %s: units belong to different groups", from.Code, to.Code)
	}

	fromFactor, err := s.FactorToBase(tx, from, itemID, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	toFactor, err := s.FactorToBase(tx, to, itemID, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	return to.Round(qty.Mul(fromFactor).Div(toFactor)), nil
}

func (s *UomService) RoundQuantity(ctx context.Context, companyID, uomID types.SnowflakeID, qty decimal.Decimal) (decimal.Decimal, error) {
	uom, err := s.getUom(s.db.WithContext(ctx), companyID, uomID)
	if err != nil {
		return decimal.Zero, err
	}
	return uom.Round(qty), nil
}
