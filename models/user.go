package models

// User kayıtlı bir kullanıcıyı temsil eder. Şifre bcrypt hash olarak tutulur.
type User struct {
	BaseModel
	Username string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	Admin    bool   `gorm:"default:false" json:"admin"`
	Verified bool   `gorm:"default:false" json:"verified"`

	// GORM İlişkileri
	Forms []Form `gorm:"foreignKey:UserID" json:"forms,omitempty"`
}
