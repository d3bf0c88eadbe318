package models

// Answer bir soruya ait cevap seçeneğini temsil eder.
type Answer struct {
	BaseModel
	AnswerText string `gorm:"type:varchar(255);not null" json:"answer_text"`
	IsCorrect  bool   `gorm:"default:false" json:"is_correct"`
	QuestionID string `gorm:"type:varchar(6);index;not null" json:"question_id"`
}
