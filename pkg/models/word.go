package models

// Word represents a dictionary entry
type Word struct {
	ID          int64  `json:"id" db:"id"`
	Original    string `json:"original" db:"text"`
	Translation string `json:"translation" db:"translate"`
	// CorrectAnswers is the requesting user's counter for this word.
	// Zero when the user has never answered it correctly.
	CorrectAnswers int `json:"correct_answers" db:"correct_answer_count"`
}
