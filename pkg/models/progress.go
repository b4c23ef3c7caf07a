package models

import "time"

// UserProgress tracks a user's answer counter for a specific word.
// Rows are created on the first recorded answer and upserted afterwards.
type UserProgress struct {
	UserID         int64     `json:"user_id" db:"user_id"`
	WordID         int64     `json:"word_id" db:"word_id"`
	CorrectAnswers int       `json:"correct_answers" db:"correct_answer_count"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
