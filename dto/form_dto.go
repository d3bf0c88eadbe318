package dto

import "anket.link/models"

// AnswerInput güncellemede ID taşıyabilir; boş ID yeni kayıt demektir.
type AnswerInput struct {
	ID         string `json:"id"`
	AnswerText string `json:"answer_text" validate:"required"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionInput bir sorunun girdi hali.
type QuestionInput struct {
	ID           string        `json:"id"`
	QuestionText string        `json:"question_text" validate:"required"`
	Answers      []AnswerInput `json:"answers" validate:"dive"`
}

// CreateFormRequest POST /api/forms gövdesi. Sahip kimliği gövdeden değil
// access token'dan alınır.
type CreateFormRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions" validate:"required,dive"`
}

// UpdateFormRequest PUT /api/forms/:formId gövdesi.
type UpdateFormRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions" validate:"required,dive"`
}

// ToQuestionModels girdi ağacını model ağacına çevirir; girdi sırası korunur.
func ToQuestionModels(inputs []QuestionInput) []models.Question {
	questions := make([]models.Question, 0, len(inputs))
	for _, qi := range inputs {
		q := models.Question{QuestionText: qi.QuestionText}
		q.ID = qi.ID
		q.Answers = make([]models.Answer, 0, len(qi.Answers))
		for _, ai := range qi.Answers {
			a := models.Answer{AnswerText: ai.AnswerText, IsCorrect: ai.IsCorrect}
			a.ID = ai.ID
			q.Answers = append(q.Answers, a)
		}
		questions = append(questions, q)
	}
	return questions
}
