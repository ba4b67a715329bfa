package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"engsupply-erp/types"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	summarySheet   = "Summary"
	templateSheet  = "Template"
	headerScanRows = 20
)

// Kolom sheet konversi; export dan import memakai urutan yang sama.
var conversionHeaders = []string{"Group Code", "From UoM Code", "Factor", "Formula", "Type", "Notes"}

var headerMarkers = []string{"Group Code", "رمز المجموعة"}
var exampleMarkers = []string{"مثال", "Example"}

type ImportIssue struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	BatchID  string        `json:"batch_id"`
	Success  bool          `json:"success"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportIssue `json:"errors"`
	Warnings []ImportIssue `json:"warnings"`
}

type UomExcelService struct {
	db   *gorm.DB
	repo *repositories.UomRepository
	uoms *UomService
	log  *zap.Logger
}

func NewUomExcelService(db *gorm.DB, uoms *UomService, log *zap.Logger) *UomExcelService {
	return &UomExcelService{
		db:   db,
		repo: repositories.NewUomRepository(db),
		uoms: uoms,
		log:  log,
	}
}

// ExportConversions builds a workbook with a Summary sheet and one sheet of global
// conversions per active group. groupID narrows the export to one group.
func (s *UomExcelService) ExportConversions(ctx context.Context, companyID types.SnowflakeID, groupID *types.SnowflakeID) (*excelize.File, error) {
	repo := s.repo.WithTx(s.db.WithContext(ctx))
	groups, err := repo.ListGroups(companyID, true)
	if err != nil {
		return nil, err
	}
	if groupID != nil {
		var picked []models.UomGroup
		for _, g := range groups {
			if g.ID == *groupID {
				picked = append(picked, g)
			}
		}
		if len(picked) == 0 {
			return nil, apperrors.NotFound("unit group", *groupID)
		}
		groups = picked
	}

	f := excelize.NewFile()
	if len(groups) == 0 {
		if err := writeTemplate(f); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	summaryHeaders := []string{"Group Code", "Group Name", "Units", "Conversions", "Base Unit", "Active"}
	for col, h := range summaryHeaders {
		f.SetCellValue(summarySheet, cellName(col, 1), h)
	}

	for i, g := range groups {
		convs, err := repo.GlobalConversionsForGroup(companyID, g.ID)
		if err != nil {
			f.Close()
			return nil, err
		}
		count, err := repo.CountConversionsForGroup(companyID, g.ID)
		if err != nil {
			f.Close()
			return nil, err
		}

		row := i + 2
		baseCode := ""
		if g.BaseUom != nil {
			baseCode = g.BaseUom.Code
		}
		f.SetCellValue(summarySheet, cellName(0, row), g.Code)
		f.SetCellValue(summarySheet, cellName(1, row), g.Name)
		f.SetCellValue(summarySheet, cellName(2, row), len(g.Units))
		f.SetCellValue(summarySheet, cellName(3, row), count)
		f.SetCellValue(summarySheet, cellName(4, row), baseCode)
		f.SetCellValue(summarySheet, cellName(5, row), yesNo(g.IsActive))

		if _, err := f.NewSheet(g.Code); err != nil {
			f.Close()
			return nil, err
		}
		for col, h := range conversionHeaders {
			f.SetCellValue(g.Code, cellName(col, 1), h)
		}
		for j, c := range convs {
			r := j + 2
			fromCode := ""
			if c.FromUom != nil {
				fromCode = c.FromUom.Code
			}
			f.SetCellValue(g.Code, cellName(0, r), g.Code)
			f.SetCellValue(g.Code, cellName(1, r), fromCode)
			f.SetCellValue(g.Code, cellName(2, r), c.ConversionFactor.String())
			f.SetCellValue(g.Code, cellName(3, r), c.FormulaExpression)
			f.SetCellValue(g.Code, cellName(4, r), c.Scope())
			f.SetCellValue(g.Code, cellName(5, r), c.Notes)
		}
	}

	s.log.Info("uom conversions exported",
		zap.String("company_id", companyID.String()),
		zap.Int("groups", len(groups)))
	return f, nil
}

func writeTemplate(f *excelize.File) error {
	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return err
	}
	f.SetCellValue(templateSheet, "A1", "Unit conversion import template")
	f.SetCellValue(templateSheet, "A2", "Create one sheet per group, keep the header row, factor = base units per one unit.")
	for col, h := range conversionHeaders {
		f.SetCellValue(templateSheet, cellName(col, 4), h)
	}
	example := []any{"Example: WEIGHT", "KG", 1000, "1 KG = 1000 G", "Global", "example row, ignored on import"}
	for col, v := range example {
		f.SetCellValue(templateSheet, cellName(col, 5), v)
	}
	return nil
}

// ImportConversions reads global conversions from every sheet except Summary and
// Template. A bad row is reported and the rest of the sheet still imports.
func (s *UomExcelService) ImportConversions(ctx context.Context, companyID, actor types.SnowflakeID, r io.Reader, skipDuplicates bool) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.Validation("failed to read Excel file: %v", err)
	}
	defer f.Close()

	result := &ImportResult{
		BatchID:  uuid.NewString(),
		Errors:   []ImportIssue{},
		Warnings: []ImportIssue{},
	}

	for _, sheet := range f.GetSheetList() {
		if sheet == summarySheet || sheet == templateSheet {
			continue
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			result.Errors = append(result.Errors, ImportIssue{Sheet: sheet, Message: err.Error()})
			continue
		}

		header := findHeaderRow(rows)
		if header < 0 {
			result.Warnings = append(result.Warnings, ImportIssue{Sheet: sheet, Message: "header row not found, sheet skipped"})
			continue
		}

		for i := header + 1; i < len(rows); i++ {
			row := rows[i]
			rowNum := i + 1
			if isBlankRow(row) || hasAnyPrefix(cell(row, 0), exampleMarkers) {
				continue
			}

			outcome, err := s.importRow(ctx, companyID, actor, row, skipDuplicates)
			if err != nil {
				result.Errors = append(result.Errors, ImportIssue{Sheet: sheet, Row: rowNum, Message: apperrors.Message(err)})
				continue
			}
			switch outcome {
			case rowCreated:
				result.Created++
			case rowUpdated:
				result.Updated++
			case rowSkipped:
				result.Skipped++
				result.Warnings = append(result.Warnings, ImportIssue{
					Sheet:   sheet,
					Row:     rowNum,
					Message: fmt.Sprintf("conversion for %s already exists, skipped", strings.ToUpper(cell(row, 1))),
				})
			}
		}
	}

	result.Success = len(result.Errors) == 0
	s.log.Info("uom conversions imported",
		zap.String("batch_id", result.BatchID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

type rowOutcome int

const (
	rowCreated rowOutcome = iota + 1
	rowUpdated
	rowSkipped
)

// importRow menyimpan satu baris dalam transaksinya sendiri.
func (s *UomExcelService) importRow(ctx context.Context, companyID, actor types.SnowflakeID, row []string, skipDuplicates bool) (rowOutcome, error) {
	groupCode := strings.ToUpper(cell(row, 0))
	uomCode := strings.ToUpper(cell(row, 1))
	factorText := strings.ReplaceAll(cell(row, 2), ",", "")
	formula := cell(row, 3)
	notes := cell(row, 5)

	if groupCode == "" || uomCode == "" || factorText == "" {
		return 0, apperrors.Validation("group code, unit code and factor are required")
	}
	factor, err := decimal.NewFromString(factorText)
	if err != nil {
		return 0, apperrors.Validation("factor %q is not a number", factorText)
	}
	if !factor.IsPositive() {
		return 0, apperrors.Validation("factor must be greater than zero")
	}

	var outcome rowOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		group, err := repo.GetGroupByCode(companyID, groupCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("group %s not found", groupCode)
		}
		if err != nil {
			return err
		}
		if !group.IsActive {
			return apperrors.Validation("group %s is inactive", groupCode)
		}

		uom, err := repo.GetUomByCode(companyID, uomCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("unit %s not found", uomCode)
		}
		if err != nil {
			return err
		}
		if !uom.IsActive {
			return apperrors.Validation("unit %s is inactive", uomCode)
		}
		if uom.GroupID == nil || *uom.GroupID != group.ID {
			return apperrors.Validation("unit %s does not belong to group %s", uomCode, groupCode)
		}

		existing, err := repo.FindConversion(companyID, uom.ID, nil, nil)
		switch {
		case err == nil && skipDuplicates:
			outcome = rowSkipped
			return nil
		case err == nil:
			existing.ConversionFactor = factor
			existing.FormulaExpression = formula
			existing.Notes = notes
			existing.IsActive = true
			existing.UpdatedBy = actor
			if err := s.uoms.ValidateConversion(tx, existing); err != nil {
				return err
			}
			outcome = rowUpdated
			return repo.UpdateConversion(existing)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		conv := models.UomConversion{
			CompanyID:         companyID,
			FromUomID:         uom.ID,
			ConversionFactor:  factor,
			FormulaExpression: formula,
			Notes:             notes,
			IsActive:          true,
		}
		conv.Stamp(actor)
		if err := s.uoms.ValidateConversion(tx, &conv); err != nil {
			return err
		}
		outcome = rowCreated
		return repo.CreateConversion(&conv)
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func findHeaderRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		first := cell(rows[i], 0)
		for _, marker := range headerMarkers {
			if strings.Contains(first, marker) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
