package models

// Question bir forma ait tek bir soruyu temsil eder.
type Question struct {
	BaseModel
	QuestionText string `gorm:"type:text;not null" json:"question_text"`
	FormID       string `gorm:"type:varchar(6);index;not null" json:"form_id"`

	// GORM İlişkileri
	Answers []Answer `gorm:"foreignKey:QuestionID" json:"answers"`
}
