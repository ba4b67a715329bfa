package models

import (
	"engsupply-erp/controllers/idgen"
	"engsupply-erp/types"
	"time"

	"gorm.io/gorm"
)

// BaseModel dipakai semua tabel: ID Snowflake + audit kolom.
type BaseModel struct {
	ID        types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time         `json:"created_at"`
	CreatedBy types.SnowflakeID `json:"created_by"`
	UpdatedAt time.Time         `json:"updated_at"`
	UpdatedBy types.SnowflakeID `json:"updated_by"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == 0 {
		b.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

// Stamp mengisi kolom CreatedBy/UpdatedBy untuk record baru.
func (b *BaseModel) Stamp(actor types.SnowflakeID) {
	if b.CreatedBy == 0 {
		b.CreatedBy = actor
	}
	b.UpdatedBy = actor
}

// ActiveOn reports whether date lies in the optional [start, end] window,
// compared by calendar day.
func ActiveOn(start, end *time.Time, date time.Time) bool {
	day := truncateDay(date)
	if start != nil && day.Before(truncateDay(*start)) {
		return false
	}
	if end != nil && day.After(truncateDay(*end)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
