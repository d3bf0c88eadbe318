package models

import "time"

// RefreshToken veritabanında saklanan refresh token kaydıdır.
// Access token'lar stateless'tır; sadece refresh tarafı kalıcıdır ve
// rotasyonda eski kayıt silinir.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(6);index;not null" json:"user_id"`
	Token     string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
