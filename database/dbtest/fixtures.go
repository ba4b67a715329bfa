package dbtest

import (
	"engsupply-erp/models"
	"engsupply-erp/types"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Company(t *testing.T, db *gorm.DB, code string) *models.Company {
	t.Helper()
	c := &models.Company{Code: code, Name: code + " Co", IsActive: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func Role(t *testing.T, db *gorm.DB, companyID types.SnowflakeID, code string, permissions ...string) *models.Role {
	t.Helper()
	r := &models.Role{CompanyID: companyID, Code: code, Name: code}
	require.NoError(t, db.Create(r).Error)
	for _, name := range permissions {
		p := models.Permission{Name: name}
		require.NoError(t, db.Where(models.Permission{Name: name}).FirstOrCreate(&p).Error)
		require.NoError(t, db.Model(r).Association("Permissions").Append(&p))
	}
	return r
}

func User(t *testing.T, db *gorm.DB, companyID types.SnowflakeID, username string, roles ...*models.Role) *models.User {
	t.Helper()
	u := &models.User{CompanyID: companyID, Username: username, Name: username, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	for _, r := range roles {
		require.NoError(t, db.Model(u).Association("Roles").Append(r))
	}
	return u
}

// UomGroup creates a group with its base unit and returns both.
func UomGroup(t *testing.T, db *gorm.DB, companyID types.SnowflakeID, code, baseCode string) (*models.UomGroup, *models.Uom) {
	t.Helper()
	g := &models.UomGroup{CompanyID: companyID, Code: code, Name: code, AllowDecimal: true, IsActive: true}
	require.NoError(t, db.Create(g).Error)

	base := Uom(t, db, companyID, g, baseCode, "0.001")
	require.NoError(t, db.Model(g).Update("base_uom_id", base.ID).Error)
	g.BaseUomID = &base.ID
	return g, base
}

func Uom(t *testing.T, db *gorm.DB, companyID types.SnowflakeID, g *models.UomGroup, code, precision string) *models.Uom {
	t.Helper()
	u := &models.Uom{
		CompanyID:         companyID,
		Code:              code,
		Name:              code,
		RoundingPrecision: decimal.RequireFromString(precision),
		IsActive:          true,
	}
	if g != nil {
		u.GroupID = &g.ID
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Conversion(t *testing.T, db *gorm.DB, companyID types.SnowflakeID, from *models.Uom, factor string) *models.UomConversion {
	t.Helper()
	c := &models.UomConversion{
		CompanyID:        companyID,
		FromUomID:        from.ID,
		ConversionFactor: decimal.RequireFromString(factor),
		IsActive:         true,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func Item(t *testing.T, db *gorm.DB, companyID types.SnowflakeID, code string, baseUom *models.Uom, cost string) *models.Item {
	t.Helper()
	it := &models.Item{CompanyID: companyID, Code: code, Name: code, IsActive: true}
	if baseUom != nil {
		it.BaseUomID = &baseUom.ID
	}
	if cost != "" {
		it.CostPrice = decimal.NewNullDecimal(decimal.RequireFromString(cost))
	}
	require.NoError(t, db.Create(it).Error)
	return it
}
