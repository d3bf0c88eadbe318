package models

import "time"

// BaseModel tüm tablolarda ortak alanları taşır.
// ID'ler "FO1234" gibi önekli kısa string'lerdir; üretimi pkg/identifier'da,
// çakışma durumunda yeniden üretimi repository katmanındadır.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(6);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
