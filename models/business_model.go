package models

// Company adalah tenant. Semua data master dan transaksi di-scope per company.
type Company struct {
	BaseModel
	Code     string `json:"code" gorm:"size:20;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:200;not null"`
	IsActive bool   `json:"is_active" gorm:"not null"`
}
