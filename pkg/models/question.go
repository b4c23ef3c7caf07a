package models

// Question is a single quiz round: four answer variants shown to the
// user and the one the user is asked to translate. Variant positions are
// fixed for the lifetime of the question because callback buttons carry
// the variant index, not the word.
type Question struct {
	Variants      []Word
	CorrectAnswer Word
}

// CorrectIndex returns the position of the correct answer among the
// variants, or -1 if the question is malformed.
func (q *Question) CorrectIndex() int {
	for i, v := range q.Variants {
		if v.Original == q.CorrectAnswer.Original {
			return i
		}
	}
	return -1
}
