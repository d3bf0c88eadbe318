package models

// Form soru-cevap ağacının kök kaydıdır. Form + Questions + Answers tek
// tutarlılık sınırı olarak yazılır ve silinir (bkz. repositories.FormRepository).
type Form struct {
	BaseModel
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	UserID      string `gorm:"type:varchar(6);index;not null" json:"user_id"`

	// GORM İlişkileri
	User      User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Questions []Question `gorm:"foreignKey:FormID" json:"questions"`
}
